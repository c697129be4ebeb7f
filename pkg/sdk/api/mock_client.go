package api

import (
	"context"
	"sync"
	"time"
)

// MockClient is a mock exchange client for testing.
// It implements Exchange with canned responses, call tracking and
// per-method error injection.
type MockClient struct {
	mu sync.RWMutex

	// Response data
	OrderBookResponse    *OrderBook
	OpenOrdersResponse   []OpenOrder
	TransactionsResponse []Transaction
	CancelResponse       *CancelResponse
	NewOrderResponse     *NewOrderResponse
	BalanceResponse      *Balance
	LeverageResponse     []LeveragePosition

	// Call tracking
	Calls         map[string]int
	LastSince     time.Time
	CreatedOrders []NewOrderRequest
	CanceledIDs   []string

	// Error injection
	ErrorOnNext map[string]error
}

// NewMockClient creates a new mock exchange client.
func NewMockClient() *MockClient {
	return &MockClient{
		Calls:       make(map[string]int),
		ErrorOnNext: make(map[string]error),
	}
}

func (m *MockClient) trackCall(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls[name]++
	if err, ok := m.ErrorOnNext[name]; ok {
		delete(m.ErrorOnNext, name)
		return err
	}
	return nil
}

func (m *MockClient) GetOrderBooks(ctx context.Context) (*OrderBook, error) {
	if err := m.trackCall("GetOrderBooks"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.OrderBookResponse == nil {
		return &OrderBook{}, nil
	}
	return m.OrderBookResponse, nil
}

func (m *MockClient) GetOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	if err := m.trackCall("GetOpenOrders"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.OpenOrdersResponse, nil
}

func (m *MockClient) GetTransactions(ctx context.Context, since time.Time) ([]Transaction, error) {
	if err := m.trackCall("GetTransactions"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.LastSince = since
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.TransactionsResponse, nil
}

func (m *MockClient) CancelOrder(ctx context.Context, id string) (*CancelResponse, error) {
	if err := m.trackCall("CancelOrder"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CanceledIDs = append(m.CanceledIDs, id)
	if m.CancelResponse == nil {
		return &CancelResponse{Success: true}, nil
	}
	return m.CancelResponse, nil
}

func (m *MockClient) CreateOrder(ctx context.Context, req *NewOrderRequest) (*NewOrderResponse, error) {
	if err := m.trackCall("CreateOrder"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if req != nil {
		m.CreatedOrders = append(m.CreatedOrders, *req)
	}
	if m.NewOrderResponse == nil {
		return &NewOrderResponse{Success: true, ID: "1"}, nil
	}
	return m.NewOrderResponse, nil
}

func (m *MockClient) GetAccountBalance(ctx context.Context) (*Balance, error) {
	if err := m.trackCall("GetAccountBalance"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.BalanceResponse == nil {
		return &Balance{Success: true}, nil
	}
	return m.BalanceResponse, nil
}

func (m *MockClient) GetLeveragePositions(ctx context.Context) ([]LeveragePosition, error) {
	if err := m.trackCall("GetLeveragePositions"); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LeverageResponse, nil
}
