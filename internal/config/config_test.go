package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 验证YAML里的字段覆盖默认值，未出现的字段保持默认
func TestLoadConfigFromFile(t *testing.T) {
	yamlContent := `
oracle:
  endpoint: "http://oracle.internal:1234/v1/chat/completions"
  model: "local/test-model"
  temperature: 0.3
parser:
  chunk_size: 8
  segment_keywords:
    - "Project"
    - "Company"
dispatcher:
  concurrency_ceiling: 3
server:
  address: ":9090"
`
	tmpDir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err, "无法创建临时目录")
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0644), "无法写入临时配置文件")

	config, err := LoadConfig(configPath)
	require.NoError(t, err, "加载配置不应返回错误")
	require.NotNil(t, config, "配置对象不应为 nil")

	assert.Equal(t, "http://oracle.internal:1234/v1/chat/completions", config.Oracle.Endpoint)
	assert.Equal(t, "local/test-model", config.Oracle.Model)
	assert.InDelta(t, 0.3, config.Oracle.Temperature, 1e-9)
	assert.Equal(t, 8, config.Parser.ChunkSize)
	assert.Equal(t, []string{"Project", "Company"}, config.Parser.SegmentKeywords)
	assert.Equal(t, 3, config.Dispatcher.ConcurrencyCeiling)
	assert.Equal(t, ":9090", config.Server.Address)

	// 未出现在YAML里的字段保持默认值
	assert.Equal(t, 4096, config.Oracle.MaxTokens, "缺失的oracle字段应取默认值")
	assert.Equal(t, 42, config.Oracle.Seed)
	assert.Equal(t, 50, config.Parser.PageSizeLines)
	assert.Equal(t, "profile.analyzed", config.RabbitMQ.AnalyzedRoutingKey)
}

// TestLoadConfigMissingFileInTest go test环境下找不到配置文件时回落到默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	config, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err, "测试环境下缺失配置文件不应报错")
	require.NotNil(t, config)
	assert.Equal(t, "http://localhost:1234/v1/chat/completions", config.Oracle.Endpoint)
	assert.Equal(t, 5, config.Dispatcher.ConcurrencyCeiling)
}

// TestLoadConfigEnvOverride 环境变量优先于配置文件
func TestLoadConfigEnvOverride(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("oracle:\n  model: \"from-file\"\n"), 0644))

	t.Setenv("ORACLE_MODEL", "from-env")

	config, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "from-env", config.Oracle.Model, "环境变量应覆盖配置文件中的模型名")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("5s", time.Minute))
	assert.Equal(t, time.Minute, GetDuration("", time.Minute), "空字符串取默认值")
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute), "非法格式取默认值")
}
