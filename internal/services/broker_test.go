package services

import (
	"context"
	"errors"
	"testing"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/internal/strategies"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

func newTestService(mock *api.MockClient) *BrokerService {
	return NewBrokerService("coincheck", "btc_jpy", domain.TradingModeCash, mock, 100)
}

func TestFetchQuotesFailSoft(t *testing.T) {
	mock := api.NewMockClient()
	mock.ErrorOnNext["GetOrderBooks"] = errors.New("timeout")
	s := newTestService(mock)

	quotes := s.FetchQuotes(context.Background())
	// 行情失败降级为空列表，不向上传播
	if quotes == nil || len(quotes) != 0 {
		t.Fatalf("expected empty quote list, got %v", quotes)
	}
}

func TestFetchQuotesBuildsTaggedQuotes(t *testing.T) {
	mock := api.NewMockClient()
	mock.OrderBookResponse = &api.OrderBook{
		Asks: []api.BookLevel{{Price: 27330, Size: 2.25}},
		Bids: []api.BookLevel{{Price: 27240, Size: 1.15}},
	}
	s := newTestService(mock)

	quotes := s.FetchQuotes(context.Background())
	if len(quotes) != 2 {
		t.Fatalf("quotes got=%d want=2", len(quotes))
	}
	if quotes[0].Side != domain.QuoteSideAsk || quotes[0].Broker != "coincheck" {
		t.Fatalf("quote[0] got=%+v", quotes[0])
	}
	if quotes[1].Side != domain.QuoteSideBid {
		t.Fatalf("quote[1] got=%+v", quotes[1])
	}
}

func TestGetPositionMisconfiguredMode(t *testing.T) {
	mock := api.NewMockClient()
	s := NewBrokerService("coincheck", "btc_jpy", domain.TradingMode("bogus"), mock, 100)

	_, err := s.GetPosition(context.Background())
	if !errors.Is(err, strategies.ErrStrategyNotFound) {
		t.Fatalf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestSendRejectsForeignBroker(t *testing.T) {
	mock := api.NewMockClient()
	s := newTestService(mock)

	order := domain.NewOrder("bitflyer", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 27000, 1)
	if err := s.Send(context.Background(), order); err == nil {
		t.Fatalf("foreign broker order must be rejected")
	}
	if mock.Calls["CreateOrder"] != 0 {
		t.Fatalf("CreateOrder must not be called for rejected order")
	}
}

func TestSendDispatchesByOrderMode(t *testing.T) {
	// adapter 默认 cash，但订单自身是 margin_open——必须按订单模式调度
	mock := api.NewMockClient()
	s := newTestService(mock)

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeMarginOpen, 27000, 1)
	if err := s.Send(context.Background(), order); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(mock.CreatedOrders) != 1 {
		t.Fatalf("CreateOrder calls got=%d", len(mock.CreatedOrders))
	}
	if mock.CreatedOrders[0].OrderType != "leverage_buy" {
		t.Fatalf("order_type got=%s want=leverage_buy", mock.CreatedOrders[0].OrderType)
	}
}

func TestCancelRejectedByExchange(t *testing.T) {
	mock := api.NewMockClient()
	mock.CancelResponse = &api.CancelResponse{Success: false, Error: "order not found"}
	s := newTestService(mock)

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 27000, 1)
	order.BrokerOrderID = "202835"

	err := s.Cancel(context.Background(), order)
	if !errors.Is(err, ErrCancelFailed) {
		t.Fatalf("expected ErrCancelFailed, got %v", err)
	}
	if order.Status != domain.OrderStatusOpen {
		t.Fatalf("status must be unchanged on failed cancel, got %s", order.Status)
	}
}

func TestCancelTransportErrorIsNotCancelFailed(t *testing.T) {
	mock := api.NewMockClient()
	mock.ErrorOnNext["CancelOrder"] = errors.New("timeout")
	s := newTestService(mock)

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 27000, 1)
	order.BrokerOrderID = "202835"

	err := s.Cancel(context.Background(), order)
	if err == nil {
		t.Fatalf("transport error must propagate")
	}
	if errors.Is(err, ErrCancelFailed) {
		t.Fatalf("transport error must not be classified as CancelFailed")
	}
}

func TestCancelSuccessIsAuthoritative(t *testing.T) {
	mock := api.NewMockClient()
	s := newTestService(mock)

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 27000, 1)
	order.BrokerOrderID = "202835"

	if err := s.Cancel(context.Background(), order); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if order.Status != domain.OrderStatusCanceled {
		t.Fatalf("status got=%s want=canceled", order.Status)
	}
	if order.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt must be set")
	}
	if len(mock.CanceledIDs) != 1 || mock.CanceledIDs[0] != "202835" {
		t.Fatalf("canceled ids got=%v", mock.CanceledIDs)
	}
}

func TestRefreshDelegatesToReconciler(t *testing.T) {
	mock := api.NewMockClient()
	mock.OpenOrdersResponse = []api.OpenOrder{
		{ID: "202835", OrderType: "buy", PendingAmount: amount(0.5)},
	}
	s := newTestService(mock)

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 27000, 1)
	order.BrokerOrderID = "202835"

	if err := s.Refresh(context.Background(), order); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if order.Status != domain.OrderStatusPartiallyFilled || order.FilledSize != 0.5 {
		t.Fatalf("refresh result: status=%s filled=%v", order.Status, order.FilledSize)
	}
}
