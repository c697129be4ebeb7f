package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order 订单领域模型
//
// Order 由下单流程创建，之后由 BrokerService 的 Refresh/Cancel 原地更新。
// 并发约束：不同 Order 实例可以并发地 Refresh/Cancel/Send；
// 同一个 Order 实例的串行化由调用方负责（本层不做保护）。
type Order struct {
	LocalID       string      // 本地订单 ID（uuid，用于日志关联）
	BrokerOrderID string      // 交易所分配的订单 ID（不透明字符串）
	Broker        string      // 所属交易所标识（例如 coincheck）
	Pair          string      // 交易对（例如 btc_jpy）
	Side          Side        // 订单方向
	TradingMode   TradingMode // 交易模式（现物/信用建玉/netout）
	Price         float64     // 委托价格
	Size          float64     // 订单原始数量（requested size）
	FilledSize    float64     // 已成交数量（对账后更新，正常情况下单调不减）
	Executions    []Execution // 成交明细（每次历史对账重建）
	Status        OrderStatus // 订单状态
	CreatedAt     time.Time   // 创建时间
	UpdatedAt     time.Time   // 最后一次对账/状态更新时间
}

// NewOrder 创建一个新的本地订单（状态 Open，分配 LocalID）
func NewOrder(broker, pair string, side Side, mode TradingMode, price, size float64) *Order {
	return &Order{
		LocalID:     uuid.NewString(),
		Broker:      broker,
		Pair:        pair,
		Side:        side,
		TradingMode: mode,
		Price:       price,
		Size:        size,
		Status:      OrderStatusOpen,
		CreatedAt:   time.Now(),
	}
}

// OrderStatus 订单状态
//
// 状态机：Open → PartiallyFilled → Filled | Canceled。
// Filled/Canceled 为终态，本层不会从终态回退。
type OrderStatus string

const (
	OrderStatusOpen            OrderStatus = "open"
	OrderStatusPartiallyFilled OrderStatus = "partially_filled"
	OrderStatusFilled          OrderStatus = "filled"
	OrderStatusCanceled        OrderStatus = "canceled"
)

// IsFinalStatus 检查订单是否为终态（filled/canceled）
// 终态不应该被中间状态（open/partially_filled）覆盖
func (o *Order) IsFinalStatus() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusCanceled
}

// IsOpen 检查订单是否开放中（含部分成交）
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusPartiallyFilled
}

// Side 订单/报价方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TradingMode 交易模式
//
// 交易所对现物（cash）、信用建玉（margin open）、netout 三种持仓口径
// 提供不同的下单/持仓查询语义，调度在 internal/strategies 完成。
type TradingMode string

const (
	TradingModeCash       TradingMode = "cash"
	TradingModeMarginOpen TradingMode = "margin_open"
	TradingModeNetOut     TradingMode = "net_out"
)
