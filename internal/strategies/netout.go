package strategies

import (
	"context"
	"fmt"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/marketmath"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

// NetOutStrategy 信用取引（差金决済）：
// 下单前先用反方向的既存建玉平仓（close_long / close_short），
// 剩余数量再作为新規建玉提交。净持仓口径与 margin_open 相同。
type NetOutStrategy struct {
	client api.Exchange
	pair   string
}

// NewNetOutStrategy 创建 netout 策略
func NewNetOutStrategy(client api.Exchange, pair string) *NetOutStrategy {
	return &NetOutStrategy{client: client, pair: pair}
}

// QueryPosition 返回建玉净持仓（long 为正、short 为负）
func (s *NetOutStrategy) QueryPosition(ctx context.Context) (float64, error) {
	return leverageNetPosition(ctx, s.client)
}

// Place 先平反方向建玉，再提交剩余数量的新規建玉。
//
// order.BrokerOrderID 回填规则：优先用新規建玉订单的 ID；
// 如果全部数量都被平仓吃掉，则用第一笔平仓订单的 ID。
func (s *NetOutStrategy) Place(ctx context.Context, order *domain.Order) error {
	positions, err := s.client.GetLeveragePositions(ctx)
	if err != nil {
		return fmt.Errorf("查询建玉失败: %w", err)
	}

	// 与订单方向相反的建玉才需要平仓
	opposingSide := "short"
	closeType := "close_short"
	if order.Side == domain.SideSell {
		opposingSide = "long"
		closeType = "close_long"
	}

	remaining := order.Size
	firstCloseID := ""
	for _, p := range positions {
		if remaining <= 0 || p.Side != opposingSide {
			continue
		}
		amount := p.Amount.Float64()
		if p.AllAmount != nil {
			amount = p.AllAmount.Float64()
		}
		closeSize := amount
		if closeSize > remaining {
			closeSize = remaining
		}

		req := &api.NewOrderRequest{
			Pair:       s.pair,
			OrderType:  closeType,
			Rate:       order.Price,
			Amount:     closeSize,
			PositionID: p.ID.String(),
		}
		resp, err := s.client.CreateOrder(ctx, req)
		if err != nil {
			return fmt.Errorf("平仓下单失败 positionID=%s: %w", p.ID.String(), err)
		}
		if firstCloseID == "" {
			firstCloseID = resp.ID.String()
		}
		remaining = marketmath.ERound(remaining - closeSize)
		log.Infof("📤 [netout平仓] 已提交: localID=%s brokerOrderID=%s positionID=%s amount=%.8f remaining=%.8f",
			order.LocalID, resp.ID.String(), p.ID.String(), closeSize, remaining)
	}

	if remaining <= 0 {
		order.BrokerOrderID = firstCloseID
		return nil
	}

	// 剩余数量走新規建玉
	orderType := "leverage_buy"
	if order.Side == domain.SideSell {
		orderType = "leverage_sell"
	}
	req := &api.NewOrderRequest{
		Pair:      s.pair,
		OrderType: orderType,
		Rate:      order.Price,
		Amount:    remaining,
	}
	resp, err := s.client.CreateOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("netout 新規建玉下单失败: %w", err)
	}
	order.BrokerOrderID = resp.ID.String()
	log.Infof("📤 [netout建玉] 已提交: localID=%s brokerOrderID=%s type=%s amount=%.8f",
		order.LocalID, order.BrokerOrderID, orderType, remaining)
	return nil
}
