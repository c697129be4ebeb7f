package domain

import "time"

// Execution 成交明细（归属于其父 Order）
//
// Execution 代表一次实际的成交，与 Order 分离：
// Order 是委托（可能未成交），Execution 是已发生的成交。
// 每次历史对账会用交易所的约定履历重建整个列表。
type Execution struct {
	Time  time.Time // 成交时间
	Price float64   // 成交价格
	Size  float64   // 成交数量（恒为非负；远端按买卖方向带符号，这里取绝对值）
}
