package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/types"
)

// 页切分参数
const (
	// DefaultPageSizeLines 每页行数
	DefaultPageSizeLines = 50
	// DefaultLargeDocThreshold 超过该行数的纯文本走分页处理
	DefaultLargeDocThreshold = 100
	// pageBreakWindow 在页尾向前回溯寻找自然断点的窗口
	pageBreakWindow = 10
)

// ResumeParser 把分块后的简历内容解析成五个标准区块。
// HTML分块逐块并发送神谕抽取；纯文本超长时按页切分后逐页抽取。
type ResumeParser struct {
	chatModel     model.ToolCallingChatModel
	dispatcher    *Dispatcher
	pageSize      int
	largeDocLines int
	logger        *log.Logger
}

// ResumeParserOption 解析器配置选项
type ResumeParserOption func(*ResumeParser)

// WithPageSize 设置每页行数
func WithPageSize(lines int) ResumeParserOption {
	return func(p *ResumeParser) {
		if lines > 0 {
			p.pageSize = lines
		}
	}
}

// WithLargeDocThreshold 设置触发分页处理的行数阈值
func WithLargeDocThreshold(lines int) ResumeParserOption {
	return func(p *ResumeParser) {
		if lines > 0 {
			p.largeDocLines = lines
		}
	}
}

// WithResumeParserDispatcher 注入共享调度器
func WithResumeParserDispatcher(d *Dispatcher) ResumeParserOption {
	return func(p *ResumeParser) {
		if d != nil {
			p.dispatcher = d
		}
	}
}

// WithResumeParserLogger 设置调试日志器
func WithResumeParserLogger(logger *log.Logger) ResumeParserOption {
	return func(p *ResumeParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewResumeParser 创建简历解析器
func NewResumeParser(chatModel model.ToolCallingChatModel, options ...ResumeParserOption) *ResumeParser {
	p := &ResumeParser{
		chatModel:     chatModel,
		dispatcher:    NewDispatcher(),
		pageSize:      DefaultPageSizeLines,
		largeDocLines: DefaultLargeDocThreshold,
		logger:        log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// blockPayload 单次抽取调用的回复结构。
// 非标准字段在反序列化时自然丢弃，缺失字段落为零值。
type blockPayload struct {
	Projects  types.ProjectsField `json:"projects"`
	Skills    string              `json:"skills"`
	Education string              `json:"education"`
	Languages string              `json:"languages"`
	Summary   string              `json:"summary"`
}

// ParseChunks 把HTML分块集合解析成标准区块。
// 每个分块一次神谕调用，失败的分块降级为空结果；服务不可用则整体失败。
func (p *ResumeParser) ParseChunks(ctx context.Context, chunks []types.Chunk) (*types.BlockSet, error) {
	if len(chunks) == 0 {
		return &types.BlockSet{}, nil
	}

	// 解析降级块里没有HTML结构，按纯文本路径处理
	if len(chunks) == 1 && chunks[0].Kind == types.ChunkError {
		p.logger.Printf("输入为error分块，切换到纯文本解析")
		return p.ParseText(ctx, chunks[0].Content)
	}

	tasks := make([]Task[blockPayload], len(chunks))
	for i, chunk := range chunks {
		content := chunk.Content
		tasks[i] = func(taskCtx context.Context) (blockPayload, error) {
			return p.extractBlocks(taskCtx, htmlParsingPrompt(content), TemperatureParsing)
		}
	}

	p.logger.Printf("开始解析%d个HTML分块", len(chunks))
	partials, err := Dispatch(ctx, p.dispatcher, tasks, func(error) blockPayload { return blockPayload{} })
	if err != nil {
		return nil, err
	}
	return p.combine(partials), nil
}

// ParseText 解析纯文本简历。超过阈值时按页切分，逐页抽取后合并。
func (p *ResumeParser) ParseText(ctx context.Context, text string) (*types.BlockSet, error) {
	cleaned := cleanResumeText(text)
	if cleaned == "" {
		return &types.BlockSet{}, nil
	}

	pages := []string{cleaned}
	if lineCount := strings.Count(cleaned, "\n") + 1; lineCount > p.largeDocLines {
		pages = splitIntoPages(cleaned, p.pageSize)
		p.logger.Printf("长文档(%d行)切分为%d页", lineCount, len(pages))
	}

	tasks := make([]Task[blockPayload], len(pages))
	for i, page := range pages {
		page := page
		tasks[i] = func(taskCtx context.Context) (blockPayload, error) {
			return p.extractBlocks(taskCtx, textParsingPrompt(page), TemperatureTextParsing)
		}
	}

	partials, err := Dispatch(ctx, p.dispatcher, tasks, func(error) blockPayload { return blockPayload{} })
	if err != nil {
		return nil, err
	}
	return p.combine(partials), nil
}

func (p *ResumeParser) extractBlocks(ctx context.Context, prompt string, temperature float32) (blockPayload, error) {
	reply, err := llm.Ask(ctx, p.chatModel, prompt, model.WithTemperature(temperature))
	if err != nil {
		return blockPayload{}, err
	}

	var payload blockPayload
	if err := llm.RecoverInto(reply, &payload); err != nil {
		return blockPayload{}, fmt.Errorf("解析区块回复失败: %w", err)
	}
	return payload, nil
}

// combine 合并多次抽取的部分结果: 文本区块以空行拼接，项目数组直接追加
func (p *ResumeParser) combine(partials []blockPayload) *types.BlockSet {
	result := &types.BlockSet{}
	for _, part := range partials {
		result.Projects = append(result.Projects, part.Projects...)
		result.Skills = joinBlockText(result.Skills, part.Skills)
		result.Education = joinBlockText(result.Education, part.Education)
		result.Languages = joinBlockText(result.Languages, part.Languages)
		result.Summary = joinBlockText(result.Summary, part.Summary)
	}
	return result
}

func joinBlockText(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition
	}
	return existing + "\n\n" + addition
}

var (
	multiBlankRe    = regexp.MustCompile(`\n\s*\n\s*\n+`)
	multiSpaceRe    = regexp.MustCompile(`[ \t]+`)
	lineEdgeSpaceRe = regexp.MustCompile(`(?m)^[ \t]+|[ \t]+$`)
)

// cleanResumeText 压缩多余空行和行内空白，统一换行符
func cleanResumeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiBlankRe.ReplaceAllString(text, "\n\n")
	text = multiSpaceRe.ReplaceAllString(text, " ")
	text = lineEdgeSpaceRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// splitIntoPages 按行数切页。页尾在最后几行里回溯寻找自然断点
// （空行、全大写的节标题、冒号结尾的行），尽量不把一个小节拦腰切断。
func splitIntoPages(text string, pageSize int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= pageSize {
		return []string{text}
	}

	var pages []string
	var current []string

	flushPage := func(upto int) {
		content := strings.TrimSpace(strings.Join(current[:upto], "\n"))
		if content != "" {
			pages = append(pages, content)
		}
		current = append([]string(nil), current[upto:]...)
	}

	for _, line := range lines {
		current = append(current, line)
		if len(current) < pageSize {
			continue
		}

		breakPoint := len(current)
		for j := len(current) - 1; j > len(current)-pageBreakWindow && j > 0; j-- {
			if isNaturalBreak(current[j]) {
				breakPoint = j + 1
				break
			}
		}
		flushPage(breakPoint)
	}

	if len(current) > 0 {
		flushPage(len(current))
	}
	return pages
}

func isNaturalBreak(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if strings.HasSuffix(trimmed, ":") {
		return true
	}
	// 全大写且含字母的行视为节标题
	if trimmed == strings.ToUpper(trimmed) && trimmed != strings.ToLower(trimmed) {
		return true
	}
	return false
}
