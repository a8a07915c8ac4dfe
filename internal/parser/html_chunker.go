package parser

import (
	"fmt"
	"io"
	"log"
	"strings"

	"golang.org/x/net/html"

	"profile-agent-go/internal/types"
)

// HTMLChunker 把转换后的HTML文档切成语义分块。
// 表格和列表独占分块，超大div按段落拆分，其余内容滚动累积。
type HTMLChunker struct {
	chunkSize int
	logger    *log.Logger
}

// HTMLChunkerOption 分块器配置选项
type HTMLChunkerOption func(*HTMLChunker)

// WithChunkSize 设置滚动累积器的容量（内容单元数）
func WithChunkSize(size int) HTMLChunkerOption {
	return func(c *HTMLChunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithChunkerLogger 设置调试日志器
func WithChunkerLogger(logger *log.Logger) HTMLChunkerOption {
	return func(c *HTMLChunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// DefaultChunkSize 默认每个分块最多容纳的内容单元数量
const DefaultChunkSize = 10

// NewHTMLChunker 创建HTML分块器
func NewHTMLChunker(options ...HTMLChunkerOption) *HTMLChunker {
	c := &HTMLChunker{
		chunkSize: DefaultChunkSize,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Chunk 解析HTML并返回有序分块。
// 解析失败时不丢内容: 返回单个error类型分块，内容为原始输入。
func (c *HTMLChunker) Chunk(htmlContent string) []types.Chunk {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		c.logger.Printf("HTML解析失败，降级为单一error分块: %v", err)
		return []types.Chunk{{
			Kind:    types.ChunkError,
			Content: htmlContent,
			Ordinal: 0,
			Size:    1,
		}}
	}

	c.clean(doc)

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}

	var (
		chunks []types.Chunk
		units  []string
	)

	emit := func(kind types.ChunkKind, content string, size int) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		chunks = append(chunks, types.Chunk{
			Kind:    kind,
			Content: content,
			Ordinal: len(chunks),
			Size:    size,
		})
	}

	// 累积器先清空，再让表格/列表独占分块
	flush := func() {
		if len(units) == 0 {
			return
		}
		emit(types.ChunkRegular, strings.Join(units, "\n"), len(units))
		units = nil
	}

	for child := body.FirstChild; child != nil; child = child.NextSibling {
		switch {
		case child.Type == html.TextNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				units = append(units, text)
				if len(units) >= c.chunkSize {
					flush()
				}
			}

		case child.Type == html.ElementNode && isIsolatedElement(child.Data):
			flush()
			kind := types.ChunkTable
			if child.Data != "table" {
				kind = types.ChunkList
			}
			emit(kind, renderNode(child), 1)

		case child.Type == html.ElementNode && child.Data == "div" && countParagraphs(child) > c.chunkSize:
			flush()
			c.splitLargeDiv(child, emit)

		case child.Type == html.ElementNode:
			if rendered := renderNode(child); strings.TrimSpace(textContent(child)) != "" {
				units = append(units, rendered)
				if len(units) >= c.chunkSize {
					flush()
				}
			}
		}
	}
	flush()

	// 清洗后一无所获但输入非空，说明文档结构对分块器不可用，
	// 整体降级为error分块，内容原样保留
	if len(chunks) == 0 && strings.TrimSpace(htmlContent) != "" {
		c.logger.Printf("清洗后无可用内容，降级为单一error分块")
		return []types.Chunk{{
			Kind:    types.ChunkError,
			Content: htmlContent,
			Ordinal: 0,
			Size:    1,
		}}
	}

	c.logger.Printf("分块完成: 共%d个分块", len(chunks))
	return chunks
}

// splitLargeDiv 把段落数超限的div拆成多个structural_split子块，
// 每个子块重新包上原div的属性，保持下游处理时的上下文
func (c *HTMLChunker) splitLargeDiv(div *html.Node, emit func(types.ChunkKind, string, int)) {
	var paragraphs []*html.Node
	for child := div.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "p" {
			paragraphs = append(paragraphs, child)
		}
	}

	openTag := buildOpenTag("div", div.Attr)
	for start := 0; start < len(paragraphs); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(paragraphs) {
			end = len(paragraphs)
		}

		var sb strings.Builder
		sb.WriteString(openTag)
		for _, p := range paragraphs[start:end] {
			sb.WriteString(renderNode(p))
		}
		sb.WriteString("</div>")
		emit(types.ChunkStructuralSplit, sb.String(), end-start)
	}
}

// clean 去掉对抽取无意义的节点: img/style/script、内联style属性、无文本的空元素
func (c *HTMLChunker) clean(node *html.Node) {
	var next *html.Node
	for child := node.FirstChild; child != nil; child = next {
		next = child.NextSibling
		c.clean(child)

		if child.Type != html.ElementNode {
			continue
		}
		switch child.Data {
		case "img", "style", "script":
			node.RemoveChild(child)
			continue
		}
		if isStructuralTag(child.Data) {
			continue
		}
		if strings.TrimSpace(textContent(child)) == "" {
			node.RemoveChild(child)
			continue
		}
		child.Attr = stripStyleAttr(child.Attr)
	}
}

func isIsolatedElement(tag string) bool {
	return tag == "table" || tag == "ul" || tag == "ol"
}

func isStructuralTag(tag string) bool {
	switch tag {
	case "html", "head", "body":
		return true
	}
	return false
}

func stripStyleAttr(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, attr := range attrs {
		if attr.Key != "style" {
			kept = append(kept, attr)
		}
	}
	return kept
}

func countParagraphs(node *html.Node) int {
	count := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "p" {
			count++
		}
	}
	return count
}

func findElement(node *html.Node, tag string) *html.Node {
	if node.Type == html.ElementNode && node.Data == tag {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}

func textContent(node *html.Node) string {
	if node.Type == html.TextNode {
		return node.Data
	}
	var sb strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		sb.WriteString(textContent(child))
	}
	return sb.String()
}

func renderNode(node *html.Node) string {
	var sb strings.Builder
	if err := html.Render(&sb, node); err != nil {
		return ""
	}
	return sb.String()
}

func buildOpenTag(tag string, attrs []html.Attribute) string {
	var sb strings.Builder
	sb.WriteString("<")
	sb.WriteString(tag)
	for _, attr := range attrs {
		sb.WriteString(fmt.Sprintf(" %s=%q", attr.Key, attr.Val))
	}
	sb.WriteString(">")
	return sb.String()
}
