package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketBurst(t *testing.T) {
	// QPM 60，容量4: 初始可以连发4个
	tb := NewTokenBucket(60, 4)

	for i := 0; i < 4; i++ {
		assert.True(t, tb.Allow(), "初始桶满，第%d个请求应当放行", i+1)
	}
	assert.False(t, tb.Allow(), "令牌耗尽后应当拒绝")
}

func TestTokenBucketDefaultCapacity(t *testing.T) {
	tb := NewTokenBucket(10, 0)
	// 默认容量为QPM的一半
	assert.True(t, tb.Allow())
	for i := 0; i < 4; i++ {
		tb.Allow()
	}
	assert.False(t, tb.Allow(), "超出默认容量5应当拒绝")
}

func TestTokenBucketWaitCancel(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	require.True(t, tb.Allow(), "先耗尽唯一令牌")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := tb.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "等待应当被上下文超时中断")
}
