package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/config"
	"profile-agent-go/internal/types"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	mr := miniredis.RunT(t)
	r, err := NewRedisAdapter(&config.RedisConfig{
		Address:          mr.Addr(),
		ResultExpireDays: 7,
	})
	require.NoError(t, err, "连接miniredis失败")
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRedisProfileRoundTrip(t *testing.T) {
	r := newTestRedis(t)
	ctx := context.Background()

	profile := &types.CandidateProfile{
		Skills:     []types.Skill{{Name: "Go", Score: 95}},
		Location:   "Yerevan",
		Experience: "5 years",
	}

	const md5 = "d41d8cd98f00b204e9800998ecf8427e"
	require.NoError(t, r.SaveProfile(ctx, md5, profile), "缓存分析结果失败")

	got, err := r.GetProfile(ctx, md5)
	require.NoError(t, err)
	require.Len(t, got.Skills, 1)
	assert.Equal(t, "Go", got.Skills[0].Name)
	assert.Equal(t, "Yerevan", got.Location)
	assert.Equal(t, "5 years", got.Experience)
}

func TestRedisProfileNotFound(t *testing.T) {
	r := newTestRedis(t)

	got, err := r.GetProfile(context.Background(), "missing-md5")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound, "缓存未命中应返回ErrNotFound")
}

func TestRedisResultExpireDuration(t *testing.T) {
	r := newTestRedis(t)
	assert.Equal(t, 7*24*60*60.0, r.GetResultExpireDuration().Seconds(), "过期时间取配置值")
}
