package services

import (
	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

// BuildQuotes 把原始订单簿转换为有界的、带方向标签的报价列表。
//
// 每侧最多取前 maxLevels 档（截断而不是采样——保留各侧原生顺序，
// 即最优价优先），asks 在前 bids 在后。纯函数，空输入产生空输出。
func BuildQuotes(broker string, book *api.OrderBook, maxLevels int) []domain.Quote {
	if book == nil || maxLevels <= 0 {
		return []domain.Quote{}
	}

	asks := book.Asks
	if len(asks) > maxLevels {
		asks = asks[:maxLevels]
	}
	bids := book.Bids
	if len(bids) > maxLevels {
		bids = bids[:maxLevels]
	}

	quotes := make([]domain.Quote, 0, len(asks)+len(bids))
	for _, level := range asks {
		quotes = append(quotes, domain.Quote{
			Broker: broker,
			Side:   domain.QuoteSideAsk,
			Price:  level.Price,
			Size:   level.Size,
		})
	}
	for _, level := range bids {
		quotes = append(quotes, domain.Quote{
			Broker: broker,
			Side:   domain.QuoteSideBid,
			Price:  level.Price,
			Size:   level.Size,
		})
	}
	return quotes
}
