package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"profile-agent-go/internal/parser"
	"profile-agent-go/internal/tracing"
	"profile-agent-go/internal/types"
)

var pipelineTracer = otel.Tracer("profile-agent-go/processor/pipeline")

// Pipeline 档案分析流水线:
// 文档转HTML → 分块 → 区块解析 → 区块抽取 → 结果汇总。
type Pipeline struct {
	converter      parser.DocumentConverter
	chunker        *parser.HTMLChunker
	resumeParser   *ResumeParser
	blockProcessor *BlockProcessor
	aggregator     *ResultAggregator
	logger         *log.Logger
}

// PipelineOption 流水线配置选项
type PipelineOption func(*Pipeline)

// WithPipelineLogger 设置调试日志器
func WithPipelineLogger(logger *log.Logger) PipelineOption {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline 组装流水线
func NewPipeline(
	converter parser.DocumentConverter,
	chunker *parser.HTMLChunker,
	resumeParser *ResumeParser,
	blockProcessor *BlockProcessor,
	aggregator *ResultAggregator,
	options ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		converter:      converter,
		chunker:        chunker,
		resumeParser:   resumeParser,
		blockProcessor: blockProcessor,
		aggregator:     aggregator,
		logger:         log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Analyze 对单个文档执行完整分析
func (p *Pipeline) Analyze(ctx context.Context, reader io.Reader, filename string) (*types.CandidateProfile, error) {
	ctx, span := pipelineTracer.Start(ctx, "pipeline.Analyze")
	defer span.End()
	// 简历文件名往往是候选人姓名，按敏感属性掩码
	span.SetAttributes(attribute.String("document.filename",
		tracing.SafeAttributeValue("document.filename", filename, tracing.MaxDocumentLength)))

	startTime := time.Now()

	htmlContent, err := p.converter.ConvertToHTML(ctx, reader, filename)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExternal)
		return nil, fmt.Errorf("文档转换失败: %w", err)
	}
	span.SetAttributes(
		attribute.Int("document.html_length", len(htmlContent)),
		attribute.String("document.preview", tracing.SafeDocumentContent(htmlContent)),
	)
	p.logger.Printf("文档转换完成: %d 个字符", len(htmlContent))

	chunks := p.chunker.Chunk(htmlContent)
	span.SetAttributes(attribute.Int("chunker.chunk_count", len(chunks)))
	p.logger.Printf("分块完成: %d个分块", len(chunks))

	blocks, err := p.resumeParser.ParseChunks(ctx, chunks)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, fmt.Errorf("区块解析失败: %w", err)
	}

	outcomes, err := p.blockProcessor.ProcessBlocks(ctx, blocks)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return nil, fmt.Errorf("区块抽取失败: %w", err)
	}
	span.SetAttributes(attribute.Int("processor.block_count", len(outcomes)))

	profile := p.aggregator.Aggregate(ctx, outcomes)

	p.logger.Printf("分析完成: %d技能 %d职位 (用时 %.2f秒)",
		len(profile.Skills), len(profile.Roles), time.Since(startTime).Seconds())
	return profile, nil
}
