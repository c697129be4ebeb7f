package strategies

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

var log = logrus.WithField("component", "strategies")

// ErrStrategyNotFound 表示交易模式没有对应的策略。
// 模式值可能来自外部配置，所以必须检查而不能假设枚举封闭。
var ErrStrategyNotFound = errors.New("strategy not found")

// Strategy 按交易模式区分的下单/持仓查询能力。
// orchestrator 只消费这两个方法；各模式内部如何下单是各自的事。
type Strategy interface {
	// QueryPosition 返回该模式口径下的基础货币持仓数量
	QueryPosition(ctx context.Context) (float64, error)
	// Place 向交易所提交订单，成功后回填 order.BrokerOrderID
	Place(ctx context.Context, order *domain.Order) error
}

// Registry 交易模式 → 策略的调度表。
//
// 构造时一次性建好全部枚举模式（cash/margin_open/net_out），之后不可变：
// 这是封闭集合调度，不做运行时注册。
type Registry struct {
	strategies map[domain.TradingMode]Strategy
}

// NewRegistry 创建策略调度表
func NewRegistry(client api.Exchange, pair string) *Registry {
	return &Registry{
		strategies: map[domain.TradingMode]Strategy{
			domain.TradingModeCash:       NewCashStrategy(client, pair),
			domain.TradingModeMarginOpen: NewMarginOpenStrategy(client, pair),
			domain.TradingModeNetOut:     NewNetOutStrategy(client, pair),
		},
	}
}

// Resolve 返回模式对应的策略；未知模式返回 ErrStrategyNotFound。
func (r *Registry) Resolve(mode domain.TradingMode) (Strategy, error) {
	s, ok := r.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, mode)
	}
	return s, nil
}

// leverageNetPosition 汇总当前开放的信用建玉：long 为正、short 为负。
// margin_open / net_out 两种模式共用该口径。
func leverageNetPosition(ctx context.Context, client api.Exchange) (float64, error) {
	positions, err := client.GetLeveragePositions(ctx)
	if err != nil {
		return 0, fmt.Errorf("查询建玉失败: %w", err)
	}
	net := 0.0
	for _, p := range positions {
		amount := p.Amount.Float64()
		// all_amount 在部分平仓后代表剩余全量，优先使用
		if p.AllAmount != nil {
			amount = p.AllAmount.Float64()
		}
		switch p.Side {
		case "long":
			net += amount
		case "short":
			net -= amount
		default:
			log.Warnf("⚠️ [建玉] 未知方向，忽略: id=%s side=%s", p.ID.String(), p.Side)
		}
	}
	return net, nil
}
