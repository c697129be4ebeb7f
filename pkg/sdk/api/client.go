package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/brokersync/pkg/ratelimit"
)

// Exchange is the remote collaborator contract consumed by the services and
// strategies layers. *Client implements it against the real exchange;
// *MockClient implements it for tests.
type Exchange interface {
	GetOrderBooks(ctx context.Context) (*OrderBook, error)
	GetOpenOrders(ctx context.Context) ([]OpenOrder, error)
	GetTransactions(ctx context.Context, since time.Time) ([]Transaction, error)
	CancelOrder(ctx context.Context, id string) (*CancelResponse, error)
	CreateOrder(ctx context.Context, req *NewOrderRequest) (*NewOrderResponse, error)
	GetAccountBalance(ctx context.Context) (*Balance, error)
	GetLeveragePositions(ctx context.Context) ([]LeveragePosition, error)
}

// Client handles exchange REST API interactions.
//
// Retries and rate-limit waits live here, in the transport; callers treat
// every operation as fire-once.
type Client struct {
	http    *resty.Client
	baseURL string
	auth    *Auth
	limiter *ratelimit.Manager
}

// NewClient creates an exchange API client. key/secret may be empty for
// public-only usage (order books).
func NewClient(baseURL, key, secret string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 429 限流时优先使用 Retry-After 头
			if resp.StatusCode() == http.StatusTooManyRequests {
				if ra := resp.Header().Get("Retry-After"); ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						return time.Duration(secs) * time.Second, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	c := &Client{
		http:    client,
		baseURL: baseURL,
		limiter: ratelimit.NewManager(),
	}
	if key != "" && secret != "" {
		c.auth = NewAuth(key, secret)
	}
	return c
}

// GetOrderBooks fetches the current order book (public endpoint).
func (c *Client) GetOrderBooks(ctx context.Context) (*OrderBook, error) {
	var book OrderBook
	if err := c.get(ctx, "/api/order_books", nil, false, &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// GetOpenOrders fetches the open-orders snapshot. Filled orders are absent
// from this list; callers reconcile them through GetTransactions.
func (c *Client) GetOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	var resp openOrdersResponse
	if err := c.get(ctx, "/api/exchange/orders/opens", nil, true, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("open orders rejected: %s", resp.Error)
	}
	return resp.Orders, nil
}

// GetTransactions fetches settled transactions created at or after since.
// The server-side filter is best effort; callers must still filter by order id.
func (c *Client) GetTransactions(ctx context.Context, since time.Time) ([]Transaction, error) {
	query := map[string]string{
		"since": strconv.FormatInt(since.Unix(), 10),
	}
	var resp transactionsResponse
	if err := c.get(ctx, "/api/exchange/orders/transactions", query, true, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("transactions rejected: %s", resp.Error)
	}
	// Best-effort client-side cut in case the server ignores "since".
	out := resp.Transactions[:0]
	for _, tx := range resp.Transactions {
		if tx.CreatedAt.Before(since) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// CancelOrder requests cancellation of the given order.
func (c *Client) CancelOrder(ctx context.Context, id string) (*CancelResponse, error) {
	var resp CancelResponse
	if err := c.send(ctx, http.MethodDelete, "/api/exchange/orders/"+id, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOrder submits a new order.
func (c *Client) CreateOrder(ctx context.Context, req *NewOrderRequest) (*NewOrderResponse, error) {
	var resp NewOrderResponse
	if err := c.send(ctx, http.MethodPost, "/api/exchange/orders", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("order rejected: %s", resp.Error)
	}
	return &resp, nil
}

// GetAccountBalance fetches the cash account balance.
func (c *Client) GetAccountBalance(ctx context.Context) (*Balance, error) {
	var resp Balance
	if err := c.get(ctx, "/api/accounts/balance", nil, true, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("balance rejected: %s", resp.Error)
	}
	return &resp, nil
}

// GetLeveragePositions fetches currently open margin positions.
func (c *Client) GetLeveragePositions(ctx context.Context) ([]LeveragePosition, error) {
	query := map[string]string{"status": "open"}
	var resp leveragePositionsResponse
	if err := c.get(ctx, "/api/exchange/leverage/positions", query, true, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("leverage positions rejected: %s", resp.Error)
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, query map[string]string, useAuth bool, out any) error {
	key := ratelimit.KeyPublic
	if useAuth {
		key = ratelimit.KeyPrivate
	}
	if err := c.limiter.Wait(ctx, key); err != nil {
		return errors.Wrap(err, "rate limit wait")
	}

	r := c.newRequest(ctx)
	if query != nil {
		r.SetQueryParams(query)
	}
	if useAuth {
		if c.auth == nil {
			return errors.New("private endpoint requires api credentials")
		}
		fullURL := c.baseURL + path
		if len(query) > 0 {
			fullURL += "?" + encodeQuery(query)
		}
		r.SetHeaders(c.auth.SignRequest(fullURL, ""))
	}
	r.SetResult(out)

	resp, err := r.Get(path)
	return c.checkResponse(http.MethodGet, path, resp, err)
}

func (c *Client) send(ctx context.Context, method, path string, body any, out any) error {
	if c.auth == nil {
		return errors.New("private endpoint requires api credentials")
	}
	if err := c.limiter.Wait(ctx, ratelimit.KeyOrdersWrite); err != nil {
		return errors.Wrap(err, "rate limit wait")
	}

	bodyStr := ""
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		bodyStr = string(raw)
	}

	r := c.newRequest(ctx)
	r.SetHeaders(c.auth.SignRequest(c.baseURL+path, bodyStr))
	if bodyStr != "" {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(bodyStr)
	}
	r.SetResult(out)

	var resp *resty.Response
	var err error
	switch method {
	case http.MethodPost:
		resp, err = r.Post(path)
	case http.MethodDelete:
		resp, err = r.Delete(path)
	default:
		return fmt.Errorf("unsupported method: %s", method)
	}
	return c.checkResponse(method, path, resp, err)
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) *resty.Request {
	r := c.http.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	r.SetHeader("Accept", "application/json")
	r.SetHeader("User-Agent", "brokersync/1.0")
	return r
}

func (c *Client) checkResponse(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	if resp.IsError() {
		body := strings.TrimSpace(string(resp.Body()))
		return errors.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode(), body)
	}
	return nil
}

// encodeQuery mirrors url.Values.Encode (sorted keys), so the signed URL
// matches the URL resty actually sends.
func encodeQuery(query map[string]string) string {
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	return values.Encode()
}
