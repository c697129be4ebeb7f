package strategies

import (
	"context"
	"fmt"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

// CashStrategy 现物交易：buy/sell 限价单，持仓即现物余额。
type CashStrategy struct {
	client api.Exchange
	pair   string
}

// NewCashStrategy 创建现物策略
func NewCashStrategy(client api.Exchange, pair string) *CashStrategy {
	return &CashStrategy{client: client, pair: pair}
}

// QueryPosition 返回现物持仓（可用 + 委托中冻结）
func (s *CashStrategy) QueryPosition(ctx context.Context) (float64, error) {
	bal, err := s.client.GetAccountBalance(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询现物余额失败: %w", err)
	}
	return bal.BTC.Float64() + bal.BTCReserved.Float64(), nil
}

// Place 提交现物限价单
func (s *CashStrategy) Place(ctx context.Context, order *domain.Order) error {
	req := &api.NewOrderRequest{
		Pair:      s.pair,
		OrderType: string(order.Side), // buy / sell
		Rate:      order.Price,
		Amount:    order.Size,
	}
	resp, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("现物下单失败: %w", err)
	}
	order.BrokerOrderID = resp.ID.String()
	log.Infof("📤 [现物下单] 已提交: localID=%s brokerOrderID=%s side=%s rate=%.0f amount=%.8f",
		order.LocalID, order.BrokerOrderID, order.Side, order.Price, order.Size)
	return nil
}
