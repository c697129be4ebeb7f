package strategies

import (
	"context"
	"fmt"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

// MarginOpenStrategy 信用取引（新規建のみ）：
// 总是开新建玉（leverage_buy / leverage_sell），不与既存建玉抵消。
type MarginOpenStrategy struct {
	client api.Exchange
	pair   string
}

// NewMarginOpenStrategy 创建信用建玉策略
func NewMarginOpenStrategy(client api.Exchange, pair string) *MarginOpenStrategy {
	return &MarginOpenStrategy{client: client, pair: pair}
}

// QueryPosition 返回建玉净持仓（long 为正、short 为负）
func (s *MarginOpenStrategy) QueryPosition(ctx context.Context) (float64, error) {
	return leverageNetPosition(ctx, s.client)
}

// Place 提交新規建玉限价单
func (s *MarginOpenStrategy) Place(ctx context.Context, order *domain.Order) error {
	orderType := "leverage_buy"
	if order.Side == domain.SideSell {
		orderType = "leverage_sell"
	}
	req := &api.NewOrderRequest{
		Pair:      s.pair,
		OrderType: orderType,
		Rate:      order.Price,
		Amount:    order.Size,
	}
	resp, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("信用建玉下单失败: %w", err)
	}
	order.BrokerOrderID = resp.ID.String()
	log.Infof("📤 [信用建玉] 已提交: localID=%s brokerOrderID=%s type=%s rate=%.0f amount=%.8f",
		order.LocalID, order.BrokerOrderID, orderType, order.Price, order.Size)
	return nil
}
