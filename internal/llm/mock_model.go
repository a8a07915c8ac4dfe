package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockResponse 预设的单次模拟响应
type MockResponse struct {
	Content string
	Error   error
}

// MockChatClient 按脚本顺序吐出预设响应的模拟客户端，测试专用。
// 响应用完后继续调用会返回错误，便于发现多余的LLM调用。
type MockChatClient struct {
	mu        sync.Mutex
	responses []MockResponse
	callIndex int
	// Prompts 记录每次调用收到的最后一条消息内容，供断言使用
	Prompts []string
}

// 确保MockChatClient实现了model.ToolCallingChatModel接口
var _ model.ToolCallingChatModel = (*MockChatClient)(nil)

// NewMockChatClient 创建脚本化模拟客户端
func NewMockChatClient(responses ...MockResponse) *MockChatClient {
	return &MockChatClient{responses: responses}
}

// CallCount 已消费的响应数量
func (m *MockChatClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callIndex
}

// Generate 返回脚本中的下一条响应
func (m *MockChatClient) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(messages) > 0 {
		m.Prompts = append(m.Prompts, messages[len(messages)-1].Content)
	}

	if m.callIndex >= len(m.responses) {
		return nil, fmt.Errorf("模拟响应已用完 (第%d次调用)", m.callIndex+1)
	}

	resp := m.responses[m.callIndex]
	m.callIndex++

	if resp.Error != nil {
		return nil, resp.Error
	}
	return &schema.Message{Role: schema.Assistant, Content: resp.Content}, nil
}

// Stream 测试中不需要流式响应
func (m *MockChatClient) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("模拟客户端不支持流式调用")
}

// WithTools 实现model.ToolCallingChatModel接口，空实现
func (m *MockChatClient) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return m, nil
}
