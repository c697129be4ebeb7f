package services

import (
	"testing"

	"github.com/betbot/brokersync/internal/domain"
	"github.com/betbot/brokersync/pkg/sdk/api"
)

func makeBook(levels int) *api.OrderBook {
	book := &api.OrderBook{}
	for i := 0; i < levels; i++ {
		book.Asks = append(book.Asks, api.BookLevel{Price: 27000 + float64(i), Size: 1})
		book.Bids = append(book.Bids, api.BookLevel{Price: 26990 - float64(i), Size: 1})
	}
	return book
}

func TestBuildQuotesTruncatesTo100PerSide(t *testing.T) {
	quotes := BuildQuotes("coincheck", makeBook(150), 100)

	if len(quotes) != 200 {
		t.Fatalf("quotes got=%d want=200", len(quotes))
	}
	// asks 在前 bids 在后，各侧保持输入顺序
	for i := 0; i < 100; i++ {
		q := quotes[i]
		if q.Side != domain.QuoteSideAsk {
			t.Fatalf("quote[%d] side got=%s want=ask", i, q.Side)
		}
		if q.Price != 27000+float64(i) {
			t.Fatalf("ask order broken at %d: price=%v", i, q.Price)
		}
	}
	for i := 100; i < 200; i++ {
		q := quotes[i]
		if q.Side != domain.QuoteSideBid {
			t.Fatalf("quote[%d] side got=%s want=bid", i, q.Side)
		}
		if q.Price != 26990-float64(i-100) {
			t.Fatalf("bid order broken at %d: price=%v", i, q.Price)
		}
	}
	if quotes[0].Broker != "coincheck" {
		t.Fatalf("broker tag got=%s", quotes[0].Broker)
	}
}

func TestBuildQuotesShortBook(t *testing.T) {
	quotes := BuildQuotes("coincheck", makeBook(3), 100)
	if len(quotes) != 6 {
		t.Fatalf("quotes got=%d want=6", len(quotes))
	}
}

func TestBuildQuotesEmptyAndNil(t *testing.T) {
	if got := BuildQuotes("coincheck", &api.OrderBook{}, 100); len(got) != 0 {
		t.Fatalf("empty book: quotes got=%d want=0", len(got))
	}
	if got := BuildQuotes("coincheck", nil, 100); len(got) != 0 {
		t.Fatalf("nil book: quotes got=%d want=0", len(got))
	}
}

func TestBuildQuotesCustomCap(t *testing.T) {
	for _, limit := range []int{1, 10, 50} {
		quotes := BuildQuotes("coincheck", makeBook(60), limit)
		if len(quotes) != 2*limit {
			t.Fatalf("limit=%d quotes got=%d want=%d", limit, len(quotes), 2*limit)
		}
	}
}
