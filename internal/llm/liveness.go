package llm

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
)

// Liveness 神谕服务探活缓存。
// 进程生命周期内只探测一次，探测结果（无论好坏）被缓存，
// 后续所有调用直接复用，避免服务宕机时每个请求都等一轮超时。
type Liveness struct {
	mu        sync.Mutex
	checked   bool
	available bool
	reason    string
}

// NewLiveness 创建探活缓存
func NewLiveness() *Liveness {
	return &Liveness{}
}

// Ensure 确认服务可用。首次调用发起真实探测，之后复用缓存结果。
// 返回可用性，不可用时reason给出原因。
func (l *Liveness) Ensure(ctx context.Context, client *http.Client, probeURL string, logger *log.Logger) (bool, string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.checked {
		return l.available, l.reason
	}
	l.checked = true

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		l.available, l.reason = false, fmt.Sprintf("构造探活请求失败: %v", err)
		return l.available, l.reason
	}

	resp, err := client.Do(req)
	if err != nil {
		l.available, l.reason = false, fmt.Sprintf("探活请求失败: %v", err)
		logger.Printf("LLM探活失败 (%s): %v", probeURL, err)
		return l.available, l.reason
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.available, l.reason = false, fmt.Sprintf("探活返回状态码 %d", resp.StatusCode)
		logger.Printf("LLM探活失败 (%s): 状态码 %d", probeURL, resp.StatusCode)
		return l.available, l.reason
	}

	l.available = true
	logger.Printf("LLM探活成功: %s", probeURL)
	return true, ""
}

// ProbeURLFor 根据聊天补全端点推导探活地址: 同主机的 /v1/models
func ProbeURLFor(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	u.Path = "/v1/models"
	u.RawQuery = ""
	return u.String()
}
