package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/internal/metrics"
	"github.com/betbot/brokersync/internal/strategies"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

var log = logrus.WithField("component", "broker_service")

var (
	// ErrUnexpectedReply 协议不一致：交易所返回了自相矛盾的状态
	// （例如开放订单的 pending_amount 缺失或为零）。对本次调用是致命的。
	ErrUnexpectedReply = errors.New("unexpected reply from exchange")
	// ErrCancelFailed 交易所拒绝了撤单请求
	ErrCancelFailed = errors.New("cancel failed")
)

// defaultQuoteLevels 盘口快照每侧默认保留的档数。
// 上限只是为了限制下游消费者的处理成本，数值本身没有更深的语义。
const defaultQuoteLevels = 100

// BrokerService 单交易所 adapter 门面。
//
// 查询（行情/持仓）数据从远端流向本地，命令（下单/撤单）从本地流向远端；
// 组件之间除被对账的 Order 以外没有共享可变状态。
//
// 并发契约：不同 Order 实例可以并发调用 Send/Cancel/Refresh；
// 同一个 Order 实例的调用串行化由调用方负责（同一时刻最多一次对账在途）。
type BrokerService struct {
	broker      string
	pair        string
	mode        domain.TradingMode
	client      api.Exchange
	registry    *strategies.Registry
	reconciler  *Reconciler
	quoteLevels int
}

// NewBrokerService 创建 adapter。mode 是本 adapter 的默认交易模式
// （GetPosition 用它；Send 按订单自身的模式调度）。
func NewBrokerService(broker, pair string, mode domain.TradingMode, client api.Exchange, quoteLevels int) *BrokerService {
	if quoteLevels <= 0 {
		quoteLevels = defaultQuoteLevels
	}
	return &BrokerService{
		broker:      broker,
		pair:        pair,
		mode:        mode,
		client:      client,
		registry:    strategies.NewRegistry(client, pair),
		reconciler:  NewReconciler(broker, client),
		quoteLevels: quoteLevels,
	}
}

// Broker 返回本 adapter 的交易所标识
func (s *BrokerService) Broker() string { return s.broker }

// FetchQuotes 获取盘口报价快照。
//
// 行情查询是 fail-soft 边界：任何传输错误都降级为空列表而不是向上传播，
// 调用方必须把空列表理解为“行情不可用”，而不是“市场是空的”。
// 订单管理类的错误（Send/Cancel/Refresh）不走这个降级。
func (s *BrokerService) FetchQuotes(ctx context.Context) []domain.Quote {
	book, err := s.client.GetOrderBooks(ctx)
	if err != nil {
		metrics.QuoteFetchErrors.Add(1)
		log.Warnf("⚠️ [行情] 获取订单簿失败，返回空报价: broker=%s err=%v", s.broker, err)
		return []domain.Quote{}
	}
	return BuildQuotes(s.broker, book, s.quoteLevels)
}

// GetPosition 按 adapter 配置的交易模式查询持仓
func (s *BrokerService) GetPosition(ctx context.Context) (float64, error) {
	strat, err := s.registry.Resolve(s.mode)
	if err != nil {
		return 0, err
	}
	return strat.QueryPosition(ctx)
}

// Send 提交订单。按订单自身的交易模式（而非 adapter 默认模式）调度策略。
func (s *BrokerService) Send(ctx context.Context, order *domain.Order) error {
	// 防接线错误：别的交易所的订单不允许从这里发出
	if order.Broker != s.broker {
		return fmt.Errorf("订单不属于本 adapter: orderBroker=%s adapterBroker=%s localID=%s",
			order.Broker, s.broker, order.LocalID)
	}
	strat, err := s.registry.Resolve(order.TradingMode)
	if err != nil {
		return err
	}
	if err := strat.Place(ctx, order); err != nil {
		return err
	}
	metrics.OrdersSent.Add(1)
	return nil
}

// Cancel 撤单。远端确认成功后同步把订单置为 Canceled——这是撤单成功
// 唯一的本地记录点，且是权威的（不需要后续 Refresh 再确认）。
func (s *BrokerService) Cancel(ctx context.Context, order *domain.Order) error {
	resp, err := s.client.CancelOrder(ctx, order.BrokerOrderID)
	if err != nil {
		return fmt.Errorf("撤单请求失败 orderID=%s: %w", order.BrokerOrderID, err)
	}
	if !resp.Success {
		metrics.CancelFailures.Add(1)
		return fmt.Errorf("%w: orderID=%s", ErrCancelFailed, order.BrokerOrderID)
	}
	order.Status = domain.OrderStatusCanceled
	order.UpdatedAt = time.Now()
	log.Infof("🛑 [撤单] 已确认: broker=%s orderID=%s localID=%s", s.broker, order.BrokerOrderID, order.LocalID)
	return nil
}

// Refresh 用远端最新数据对账订单（状态机在 Reconciler）
func (s *BrokerService) Refresh(ctx context.Context, order *domain.Order) error {
	return s.reconciler.Reconcile(ctx, order)
}
