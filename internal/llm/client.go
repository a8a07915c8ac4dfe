package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"profile-agent-go/internal/types"
	"profile-agent-go/pkg/ratelimit"
)

// 默认连接参数，对应本地LM Studio风格的OpenAI兼容端点
const (
	DefaultEndpoint    = "http://localhost:1234/v1/chat/completions"
	DefaultModelName   = "google/gemma-3-12b"
	DefaultMaxTokens   = 4096
	DefaultTemperature = float32(0.0)
	DefaultSeed        = 42
	DefaultTimeout     = 120 * time.Second
)

// Client OpenAI兼容聊天补全端点的客户端。
// 实现eino的model.ToolCallingChatModel接口，让上层组件
// 可以在真实服务和测试mock之间无感切换。
//
// 调用失败不重试: 失败的槽位由上层降级处理，排障时日志是连贯的单次调用。
type Client struct {
	endpoint    string
	modelName   string
	maxTokens   int
	temperature float32
	seed        int
	httpClient  *http.Client
	liveness    *Liveness
	limiter     *ratelimit.TokenBucket
	logger      *log.Logger
}

// ClientOption 客户端配置选项
type ClientOption func(*Client)

// WithModelName 设置模型名
func WithModelName(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithMaxTokens 设置单次回复的token上限
func WithMaxTokens(maxTokens int) ClientOption {
	return func(c *Client) {
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	}
}

// WithDefaultTemperature 设置调用未指定时使用的采样温度
func WithDefaultTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithSeed 设置采样种子，固定种子保证可复现
func WithSeed(seed int) ClientOption {
	return func(c *Client) {
		c.seed = seed
	}
}

// WithRequestTimeout 设置HTTP超时
func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient 替换HTTP客户端（测试用）
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLiveness 注入共享的探活缓存
func WithLiveness(liveness *Liveness) ClientOption {
	return func(c *Client) {
		if liveness != nil {
			c.liveness = liveness
		}
	}
}

// WithRateLimiter 注入请求速率限制器
func WithRateLimiter(limiter *ratelimit.TokenBucket) ClientOption {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithClientLogger 配置自定义日志记录器
func WithClientLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// 确保Client实现了model.ToolCallingChatModel接口
var _ model.ToolCallingChatModel = (*Client)(nil)

// NewClient 创建聊天补全客户端
func NewClient(endpoint string, options ...ClientOption) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	client := &Client{
		endpoint:    endpoint,
		modelName:   DefaultModelName,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		seed:        DefaultSeed,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		liveness:    NewLiveness(),
		logger:      log.New(os.Stderr, "[LLMClient] ", log.LstdFlags),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// OpenAI兼容的请求/响应线格式
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
	Seed        int           `json:"seed"`
	Stream      bool          `json:"stream"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate 实现model.BaseChatModel接口，发起一次聊天补全调用
func (c *Client) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("等待速率限制失败: %w", err)
		}
	}

	if ok, reason := c.liveness.Ensure(ctx, c.httpClient, ProbeURLFor(c.endpoint), c.logger); !ok {
		return nil, &types.OracleUnavailableError{Endpoint: c.endpoint, Reason: reason}
	}

	commonOpts := model.GetCommonOptions(&model.Options{
		Temperature: &c.temperature,
		MaxTokens:   &c.maxTokens,
		Model:       &c.modelName,
	}, opts...)

	payload := wireRequest{
		Model:       *commonOpts.Model,
		MaxTokens:   *commonOpts.MaxTokens,
		Temperature: *commonOpts.Temperature,
		Seed:        c.seed,
		Stream:      false,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, wireMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	startTime := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建LLM请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// 连接错误和超时都归为服务不可用
		return nil, &types.OracleUnavailableError{Endpoint: c.endpoint, Reason: "请求失败", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取LLM响应失败: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.OracleUnavailableError{
			Endpoint: c.endpoint,
			Reason:   fmt.Sprintf("状态码 %d: %s", resp.StatusCode, truncateForLog(string(respBody))),
		}
	}

	var parsed wireResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("解析LLM响应失败: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("LLM响应中没有choices")
	}

	c.logger.Printf("LLM调用完成: temp=%.1f, %d 个字符 (用时 %.2f秒)",
		*commonOpts.Temperature, len(parsed.Choices[0].Message.Content), time.Since(startTime).Seconds())

	return &schema.Message{
		Role:    schema.Assistant,
		Content: parsed.Choices[0].Message.Content,
	}, nil
}

// Stream 流式调用未启用，线格式固定stream=false
func (c *Client) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("流式调用未启用")
}

// WithTools 实现model.ToolCallingChatModel接口。流水线不使用工具调用。
func (c *Client) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return nil, fmt.Errorf("该客户端不支持工具调用")
}

// Ask 单轮提问的便捷封装: 一条user消息进，回复文本出
func Ask(ctx context.Context, chatModel model.ToolCallingChatModel, prompt string, opts ...model.Option) (string, error) {
	msg, err := chatModel.Generate(ctx, []*schema.Message{
		{Role: schema.User, Content: prompt},
	}, opts...)
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("LLM返回空消息")
	}
	return msg.Content, nil
}

func truncateForLog(s string) string {
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
