package parser

import (
	"context"
	"fmt"
	"html"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFConverter 基于Eino PDF Parser的本地文档转换器。
// 没有Tika服务器时的兜底实现: 只支持.pdf，提取纯文本后
// 按行包装成段落HTML，交给下游分块器处理。
type EinoPDFConverter struct {
	parser *pdf.PDFParser
	logger *log.Logger
}

// EinoPDFOption PDF转换器的配置选项
type EinoPDFOption func(*EinoPDFConverter)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(c *EinoPDFConverter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

var _ DocumentConverter = (*EinoPDFConverter)(nil)

// NewEinoPDFConverter 初始化本地PDF转换器。
// 不按页面分割，整个文档的文本作为连续内容处理。
func NewEinoPDFConverter(ctx context.Context, options ...EinoPDFOption) (*EinoPDFConverter, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建Eino PDF解析器失败: %w", err)
	}

	converter := &EinoPDFConverter{
		parser: p,
		logger: log.New(os.Stderr, "[PDF转换器] ", log.LstdFlags),
	}
	for _, option := range options {
		option(converter)
	}
	return converter, nil
}

// ConvertToHTML 提取PDF文本并包装成段落HTML
func (c *EinoPDFConverter) ConvertToHTML(ctx context.Context, reader io.Reader, filename string) (string, error) {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".pdf" {
		return "", fmt.Errorf("内置转换器仅支持.pdf，无法处理%s，请配置Tika服务器", ext)
	}

	startTime := time.Now()
	c.logger.Printf("开始转换文档: %s", filename)

	docs, err := c.parser.Parse(ctx, reader, einoParser.WithURI(filename))
	if err != nil {
		return "", fmt.Errorf("PDF解析失败 (%s): %w", filename, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("PDF解析无结果: %s", filename)
	}

	var sb strings.Builder
	sb.WriteString("<html><body>")
	for _, doc := range docs {
		for _, line := range strings.Split(doc.Content, "\n") {
			if text := strings.TrimSpace(line); text != "" {
				sb.WriteString("<p>")
				sb.WriteString(html.EscapeString(text))
				sb.WriteString("</p>")
			}
		}
	}
	sb.WriteString("</body></html>")

	c.logger.Printf("文档转换完成: %d 个字符 (用时 %.2f秒)", sb.Len(), time.Since(startTime).Seconds())
	return sb.String(), nil
}
