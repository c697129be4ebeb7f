package domain

// QuoteSide 报价方向（卖板/买板）
type QuoteSide string

const (
	QuoteSideAsk QuoteSide = "ask"
	QuoteSideBid QuoteSide = "bid"
)

// Quote 盘口报价（不可变值对象，每次快照转换新建）
type Quote struct {
	Broker string    // 交易所标识
	Side   QuoteSide // ask/bid
	Price  float64
	Size   float64
}
