package strategies

import (
	"context"
	"errors"
	"testing"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

func TestRegistryResolvesAllModes(t *testing.T) {
	reg := NewRegistry(api.NewMockClient(), "btc_jpy")

	for _, mode := range []domain.TradingMode{
		domain.TradingModeCash,
		domain.TradingModeMarginOpen,
		domain.TradingModeNetOut,
	} {
		s, err := reg.Resolve(mode)
		if err != nil {
			t.Fatalf("Resolve(%s) error: %v", mode, err)
		}
		if s == nil {
			t.Fatalf("Resolve(%s) returned nil strategy", mode)
		}
	}
}

func TestRegistryUnknownMode(t *testing.T) {
	reg := NewRegistry(api.NewMockClient(), "btc_jpy")

	_, err := reg.Resolve(domain.TradingMode("leverage"))
	if !errors.Is(err, ErrStrategyNotFound) {
		t.Fatalf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestCashStrategyPlaceSetsBrokerOrderID(t *testing.T) {
	mock := api.NewMockClient()
	mock.NewOrderResponse = &api.NewOrderResponse{Success: true, ID: "202835"}
	reg := NewRegistry(mock, "btc_jpy")

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeCash, 26890, 0.5)
	s, err := reg.Resolve(domain.TradingModeCash)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if err := s.Place(context.Background(), order); err != nil {
		t.Fatalf("Place error: %v", err)
	}
	if order.BrokerOrderID != "202835" {
		t.Fatalf("BrokerOrderID got=%s", order.BrokerOrderID)
	}
	if len(mock.CreatedOrders) != 1 {
		t.Fatalf("CreateOrder calls got=%d", len(mock.CreatedOrders))
	}
	req := mock.CreatedOrders[0]
	if req.OrderType != "buy" || req.Rate != 26890 || req.Amount != 0.5 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestCashStrategyQueryPosition(t *testing.T) {
	mock := api.NewMockClient()
	mock.BalanceResponse = &api.Balance{Success: true, BTC: 1.2, BTCReserved: 0.3}
	s := NewCashStrategy(mock, "btc_jpy")

	pos, err := s.QueryPosition(context.Background())
	if err != nil {
		t.Fatalf("QueryPosition error: %v", err)
	}
	if pos != 1.5 {
		t.Fatalf("position got=%v want=1.5", pos)
	}
}

func TestLeverageNetPosition(t *testing.T) {
	mock := api.NewMockClient()
	all := api.Amount(0.4)
	mock.LeverageResponse = []api.LeveragePosition{
		{ID: "1", Side: "long", Amount: 1.0},
		{ID: "2", Side: "short", Amount: 0.5, AllAmount: &all}, // all_amount 优先
	}
	s := NewMarginOpenStrategy(mock, "btc_jpy")

	pos, err := s.QueryPosition(context.Background())
	if err != nil {
		t.Fatalf("QueryPosition error: %v", err)
	}
	if pos != 0.6 {
		t.Fatalf("net position got=%v want=0.6", pos)
	}
}

func TestNetOutPlaceClosesOpposingFirst(t *testing.T) {
	mock := api.NewMockClient()
	mock.LeverageResponse = []api.LeveragePosition{
		{ID: "11", Side: "short", Amount: 0.3},
		{ID: "12", Side: "long", Amount: 9.9}, // 同方向，不参与平仓
	}
	s := NewNetOutStrategy(mock, "btc_jpy")

	order := domain.NewOrder("coincheck", "btc_jpy", domain.SideBuy, domain.TradingModeNetOut, 27000, 0.5)
	if err := s.Place(context.Background(), order); err != nil {
		t.Fatalf("Place error: %v", err)
	}

	// 先 close_short 0.3，再 leverage_buy 0.2
	if len(mock.CreatedOrders) != 2 {
		t.Fatalf("CreateOrder calls got=%d want=2", len(mock.CreatedOrders))
	}
	first, second := mock.CreatedOrders[0], mock.CreatedOrders[1]
	if first.OrderType != "close_short" || first.PositionID != "11" || first.Amount != 0.3 {
		t.Fatalf("first request got=%+v", first)
	}
	if second.OrderType != "leverage_buy" || second.Amount != 0.2 {
		t.Fatalf("second request got=%+v", second)
	}
	if order.BrokerOrderID == "" {
		t.Fatalf("BrokerOrderID must be set")
	}
}
