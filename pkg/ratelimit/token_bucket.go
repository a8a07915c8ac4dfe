package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket 按QPM限速的令牌桶。
// 上游模型服务通常以每分钟请求数计费和限流，这里直接用QPM做参数。
type TokenBucket struct {
	mu         sync.Mutex
	ratePerSec float64
	capacity   float64
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucket 创建令牌桶。capacity<=0时默认为QPM的一半(至少1)，
// 允许短时突发但不超过长期速率。
func NewTokenBucket(qpm int, capacity int) *TokenBucket {
	if capacity <= 0 {
		capacity = qpm / 2
		if capacity <= 0 {
			capacity = 1
		}
	}

	return &TokenBucket{
		ratePerSec: float64(qpm) / 60.0,
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		lastRefill: time.Now(),
	}
}

// refill 按流逝时间补充令牌，调用方需持有锁
func (tb *TokenBucket) refill() {
	now := time.Now()
	tb.tokens += now.Sub(tb.lastRefill).Seconds() * tb.ratePerSec
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// Allow 尝试消耗一个令牌，无令牌时立即返回false
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1.0 {
		tb.tokens--
		return true
	}
	return false
}

// Wait 阻塞直到取得令牌或上下文取消
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		tb.refill()
		if tb.tokens >= 1.0 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}
		waitTime := time.Duration((1.0 - tb.tokens) / tb.ratePerSec * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}
