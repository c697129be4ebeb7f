// Package ratelimit 为交易所 REST API 提供客户端侧限流。
//
// 交易所对公有/私有端点分别计数，下单和撤单又比普通私有查询更严格，
// 所以这里按端点类别各挂一个令牌桶，请求发出前先 Wait。
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// 端点类别。transport 层按请求性质选 key。
const (
	KeyPublic      = "public"       // 公有行情端点（订单簿等）
	KeyPrivate     = "private"      // 私有查询端点（余额、订单、持仓）
	KeyOrdersWrite = "orders:write" // 下单 / 撤单
)

// TokenBucket 令牌桶。令牌按 refillRate（每秒）匀速补充，封顶 capacity。
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	tokens     float64
	refillRate float64
	lastRefill time.Time
}

// NewTokenBucket 创建令牌桶，初始为满。
func NewTokenBucket(capacity, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// 调用方必须持有 mu。
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// Allow 尝试取一个令牌，不阻塞。
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait 阻塞到取得令牌或 ctx 结束。
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		tb.refill(now)
		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		// 距离下一个令牌生成还差多久
		deficit := 1 - tb.tokens
		wait := time.Duration(deficit / tb.refillRate * float64(time.Second))
		tb.mu.Unlock()

		if wait < 10*time.Millisecond {
			wait = 10 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Manager 按端点类别分发到对应的令牌桶。
type Manager struct {
	mu      sync.RWMutex
	buckets map[string]*TokenBucket
}

// NewManager 创建带默认配额的管理器。配额按交易所公开的限流规则取值，
// 留了少量余量给重试。
func NewManager() *Manager {
	return &Manager{
		buckets: map[string]*TokenBucket{
			KeyPublic:      NewTokenBucket(10, 8),
			KeyPrivate:     NewTokenBucket(5, 4),
			KeyOrdersWrite: NewTokenBucket(3, 2),
		},
	}
}

// Wait 在 key 对应的桶上等待令牌。未注册的 key 按私有查询处理。
func (m *Manager) Wait(ctx context.Context, key string) error {
	m.mu.RLock()
	bucket, ok := m.buckets[key]
	if !ok {
		bucket = m.buckets[KeyPrivate]
	}
	m.mu.RUnlock()

	if bucket == nil {
		return nil
	}
	return bucket.Wait(ctx)
}

// Set 覆盖某个类别的配额，主要给测试用。
func (m *Manager) Set(key string, bucket *TokenBucket) {
	m.mu.Lock()
	m.buckets[key] = bucket
	m.mu.Unlock()
}
