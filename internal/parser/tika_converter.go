package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DocumentConverter 文档转HTML接口。
// 流水线只依赖这个接口，具体实现可以是Tika也可以是本地提取器。
type DocumentConverter interface {
	// ConvertToHTML 把原始文档流转换成HTML
	ConvertToHTML(ctx context.Context, reader io.Reader, filename string) (string, error)
}

// TikaConverter 基于Apache Tika服务器的文档转换器，
// 支持.pdf和.docx，通过PUT /tika获取HTML表示
type TikaConverter struct {
	// Tika服务器地址，例如 http://localhost:9998
	ServerURL string
	// HTTP客户端，可配置超时等参数
	Client *http.Client
	// 日志记录
	logger *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaConverter)

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(c *TikaConverter) {
		c.Client.Timeout = timeout
	}
}

// WithTikaHTTPClient 替换HTTP客户端（测试用）
func WithTikaHTTPClient(client *http.Client) TikaOption {
	return func(c *TikaConverter) {
		if client != nil {
			c.Client = client
		}
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(c *TikaConverter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// 确保TikaConverter实现了DocumentConverter接口
var _ DocumentConverter = (*TikaConverter)(nil)

// 按扩展名映射Content-Type，Tika靠它选解析器
var tikaContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// NewTikaConverter 创建Tika文档转换器
func NewTikaConverter(serverURL string, options ...TikaOption) *TikaConverter {
	converter := &TikaConverter{
		ServerURL: strings.TrimRight(serverURL, "/"),
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log.New(os.Stderr, "[TikaConverter] ", log.LstdFlags),
	}
	for _, option := range options {
		option(converter)
	}
	return converter
}

// ConvertToHTML 把文档流提交给Tika，返回HTML表示
func (c *TikaConverter) ConvertToHTML(ctx context.Context, reader io.Reader, filename string) (string, error) {
	startTime := time.Now()
	c.logger.Printf("开始转换文档: %s", filename)

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取文档内容失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.ServerURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("X-Tika-Resource-Name", filepath.Base(filename))
	if contentType, ok := tikaContentTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Tika请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tika返回非预期状态码 %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Printf("文档转换完成: %d 个字符 (用时 %.2f秒)", len(body), time.Since(startTime).Seconds())
	return string(body), nil
}
