package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/internal/metrics"
	"github.com/betbot/brokersync/pkg/marketmath"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

// transactionLookback 查询约定履历时相对订单创建时间的安全回溯窗口。
// 本地创建时间和交易所成交账本之间可能有时钟偏差，这是启发式容忍值，
// 不是协议保证。
const transactionLookback = time.Minute

// Reconciler 订单对账状态机。
//
// 远端状态只有部分可见：开放订单快照不包含已成交订单，成交明细在
// 另一个约定履历接口里。Reconcile 把这两个数据源合成为本地订单的
// 成交数量、成交明细和生命周期状态。
type Reconciler struct {
	broker string
	client api.Exchange
}

// NewReconciler 创建对账器
func NewReconciler(broker string, client api.Exchange) *Reconciler {
	return &Reconciler{broker: broker, client: client}
}

// Reconcile 对账单个订单，原地更新 order 的对账字段。
//
// 订单仍在开放列表中 → 按 pending_amount 推算部分成交（不查约定履历：
// 一个订单不可能既“仍然开放”又“已经结算”）；
// 订单已离开开放列表 → 用约定履历重建成交明细并判定终态。
func (r *Reconciler) Reconcile(ctx context.Context, order *domain.Order) error {
	metrics.ReconcileRuns.Add(1)

	openOrders, err := r.client.GetOpenOrders(ctx)
	if err != nil {
		metrics.ReconcileErrors.Add(1)
		return fmt.Errorf("获取开放订单失败: %w", err)
	}

	for _, oo := range openOrders {
		if oo.ID.String() == order.BrokerOrderID {
			return r.reconcileOpen(order, oo)
		}
	}
	return r.reconcileDelisted(ctx, order)
}

// reconcileOpen 订单仍在开放列表：远端报告的 pending_amount 是剩余未成交量。
func (r *Reconciler) reconcileOpen(order *domain.Order, oo api.OpenOrder) error {
	// pending_amount 为零和“订单仍然开放”互相矛盾，按协议违规处理，
	// 不能当成正常的全部成交。
	if oo.PendingAmount == nil || oo.PendingAmount.Float64() == 0 {
		metrics.ReconcileErrors.Add(1)
		return fmt.Errorf("%w: 开放订单的 pending_amount 缺失或为零: broker=%s orderID=%s",
			ErrUnexpectedReply, r.broker, order.BrokerOrderID)
	}

	// 远端在多次部分成交后会累积浮点误差，对齐到最小单位再比较
	filled := marketmath.ERound(order.Size - oo.PendingAmount.Float64())
	order.FilledSize = filled
	if filled > 0 {
		order.Status = domain.OrderStatusPartiallyFilled
		log.Infof("🔄 [对账] 部分成交: broker=%s orderID=%s filled=%.8f/%.8f",
			r.broker, order.BrokerOrderID, filled, order.Size)
	}
	order.UpdatedAt = time.Now()
	return nil
}

// reconcileDelisted 订单已离开开放列表：要么全部成交要么被取消，
// 用约定履历区分两者。
func (r *Reconciler) reconcileDelisted(ctx context.Context, order *domain.Order) error {
	since := order.CreatedAt.Add(-transactionLookback)
	transactions, err := r.client.GetTransactions(ctx, since)
	if err != nil {
		metrics.ReconcileErrors.Add(1)
		return fmt.Errorf("获取约定履历失败: %w", err)
	}

	var mine []api.Transaction
	for _, tx := range transactions {
		if tx.OrderID.String() == order.BrokerOrderID {
			mine = append(mine, tx)
		}
	}

	// 既不在开放列表也没有约定履历：交易所侧的可见性延迟是预期内的，
	// 不能误报成已取消。保持订单原样，等下一次对账。
	if len(mine) == 0 {
		metrics.ReconcileNoops.Add(1)
		log.Warnf("⚠️ [对账] 订单状态暂不可见（不在开放列表，约定履历也没有记录），跳过: broker=%s orderID=%s",
			r.broker, order.BrokerOrderID)
		return nil
	}

	// 约定履历的 base 数量按买卖方向带符号，成交明细只关心绝对量
	executions := make([]domain.Execution, 0, len(mine))
	total := 0.0
	for _, tx := range mine {
		size := math.Abs(tx.Funds.Base.Float64())
		executions = append(executions, domain.Execution{
			Time:  tx.CreatedAt,
			Price: tx.Rate.Float64(),
			Size:  size,
		})
		total += size
	}
	filled := marketmath.ERound(total)

	order.Executions = executions
	order.FilledSize = filled
	if marketmath.AlmostEqual(filled, order.Size) {
		order.Status = domain.OrderStatusFilled
		log.Infof("✅ [对账] 全部成交: broker=%s orderID=%s filled=%.8f executions=%d",
			r.broker, order.BrokerOrderID, filled, len(executions))
	} else {
		// 部分成交后离开订单簿：订单已不可能继续成交，按取消处理。
		// 交易所没有提供区分“部分后取消”的信号，不引入更细的状态。
		order.Status = domain.OrderStatusCanceled
		log.Infof("🛑 [对账] 订单离开订单簿且未完全成交，按取消处理: broker=%s orderID=%s filled=%.8f/%.8f",
			r.broker, order.BrokerOrderID, filled, order.Size)
	}
	order.UpdatedAt = time.Now()
	return nil
}
