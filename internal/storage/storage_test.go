package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/config"
)

func TestNewStorageZeroConfigured(t *testing.T) {
	// 不配置任何后端时，所有组件为nil但管理器本身可用
	s, err := NewStorage(context.Background(), &config.Config{})
	require.NoError(t, err, "零存储配置不应报错")
	require.NotNil(t, s, "应返回空的存储管理器")
	assert.Nil(t, s.MinIO, "未配置MinIO时应为nil")
	assert.Nil(t, s.RabbitMQ, "未配置RabbitMQ时应为nil")
	assert.Nil(t, s.MySQL, "未配置MySQL时应为nil")
	assert.Nil(t, s.Redis, "未配置Redis时应为nil")

	// Close 对全nil组件应安全
	s.Close()
}

func TestNewStorageNilConfig(t *testing.T) {
	_, err := NewStorage(context.Background(), nil)
	assert.Error(t, err, "空配置应报错")
}
