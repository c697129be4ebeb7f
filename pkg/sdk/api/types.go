package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a numeric API field that the exchange encodes either as a JSON
// number or as a string ("2.25"). Parsing goes through shopspring/decimal so
// string-encoded values do not pick up binary float artifacts before the
// reconciliation layer rounds them.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	*a = Amount(f)
	return nil
}

// Float64 returns the plain float value.
func (a Amount) Float64() float64 { return float64(a) }

// BookLevel is one [price, size] level of the order book.
type BookLevel struct {
	Price float64
	Size  float64
}

func (l *BookLevel) UnmarshalJSON(data []byte) error {
	var raw [2]Amount
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse book level: %w", err)
	}
	l.Price = raw[0].Float64()
	l.Size = raw[1].Float64()
	return nil
}

// OrderBook is the /api/order_books response.
// Asks are ascending, bids descending (best price first), per exchange convention.
type OrderBook struct {
	Asks []BookLevel `json:"asks"`
	Bids []BookLevel `json:"bids"`
}

// OpenOrder is one entry of the open-orders snapshot.
//
// PendingAmount is the remaining unfilled quantity. The exchange omits it for
// market buys (PendingMarketBuyAmount is used instead), so it is a pointer:
// nil means absent, which the reconciler treats as a protocol violation for
// limit orders.
type OpenOrder struct {
	ID                     json.Number `json:"id"`
	Pair                   string      `json:"pair"`
	OrderType              string      `json:"order_type"`
	Rate                   *Amount     `json:"rate"`
	PendingAmount          *Amount     `json:"pending_amount"`
	PendingMarketBuyAmount *Amount     `json:"pending_market_buy_amount"`
	CreatedAt              time.Time   `json:"created_at"`
}

type openOrdersResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Orders  []OpenOrder `json:"orders"`
}

// Funds is the per-currency balance delta of one transaction.
// The base delta is signed: positive for buys, negative for sells.
type Funds struct {
	Base  Amount `json:"btc"`
	Quote Amount `json:"jpy"`
}

// Transaction is one settled fill from the historical-transactions feed.
type Transaction struct {
	ID        json.Number `json:"id"`
	OrderID   json.Number `json:"order_id"`
	Pair      string      `json:"pair"`
	Rate      Amount      `json:"rate"`
	Funds     Funds       `json:"funds"`
	Side      string      `json:"side"`
	CreatedAt time.Time   `json:"created_at"`
}

type transactionsResponse struct {
	Success      bool          `json:"success"`
	Error        string        `json:"error"`
	Transactions []Transaction `json:"transactions"`
}

// CancelResponse is the order-cancellation acknowledgement.
type CancelResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	ID      json.Number `json:"id"`
}

// NewOrderRequest is the order-creation payload.
//
// OrderType is one of: buy, sell, leverage_buy, leverage_sell,
// close_long, close_short.
type NewOrderRequest struct {
	Pair       string  `json:"pair"`
	OrderType  string  `json:"order_type"`
	Rate       float64 `json:"rate,omitempty"`
	Amount     float64 `json:"amount,omitempty"`
	PositionID string  `json:"position_id,omitempty"`
}

// NewOrderResponse is the order-creation acknowledgement.
type NewOrderResponse struct {
	Success   bool        `json:"success"`
	Error     string      `json:"error"`
	ID        json.Number `json:"id"`
	Pair      string      `json:"pair"`
	OrderType string      `json:"order_type"`
	Rate      *Amount     `json:"rate"`
	Amount    *Amount     `json:"amount"`
	CreatedAt time.Time   `json:"created_at"`
}

// Balance is the cash account balance.
type Balance struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	BTC          Amount `json:"btc"`
	BTCReserved  Amount `json:"btc_reserved"`
	JPY          Amount `json:"jpy"`
	JPYReserved  Amount `json:"jpy_reserved"`
}

// LeveragePosition is one open margin position.
type LeveragePosition struct {
	ID        json.Number `json:"id"`
	Pair      string      `json:"pair"`
	Side      string      `json:"side"` // long / short
	Amount    Amount      `json:"amount"`
	AllAmount *Amount     `json:"all_amount"`
	CreatedAt time.Time   `json:"created_at"`
}

type leveragePositionsResponse struct {
	Success bool               `json:"success"`
	Error   string             `json:"error"`
	Data    []LeveragePosition `json:"data"`
}
