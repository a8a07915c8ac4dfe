package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/parser"
	"profile-agent-go/internal/types"
)

// blockOrder 区块处理的固定顺序，聚合阶段的首见优先规则依赖它
var blockOrder = []string{"projects", "skills", "education", "languages", "summary"}

// BlockProcessor 把标准区块逐个送神谕抽取成结构化结果。
// projects区块特殊: 先切分成单个项目片段，每个片段独立抽取后合并。
type BlockProcessor struct {
	chatModel  model.ToolCallingChatModel
	dispatcher *Dispatcher
	segmenter  *parser.ProjectSegmenter
	logger     *log.Logger
}

// BlockProcessorOption 区块处理器配置选项
type BlockProcessorOption func(*BlockProcessor)

// WithBlockDispatcher 注入共享调度器
func WithBlockDispatcher(d *Dispatcher) BlockProcessorOption {
	return func(bp *BlockProcessor) {
		if d != nil {
			bp.dispatcher = d
		}
	}
}

// WithBlockSegmenter 注入项目切分器
func WithBlockSegmenter(s *parser.ProjectSegmenter) BlockProcessorOption {
	return func(bp *BlockProcessor) {
		if s != nil {
			bp.segmenter = s
		}
	}
}

// WithBlockLogger 设置调试日志器
func WithBlockLogger(logger *log.Logger) BlockProcessorOption {
	return func(bp *BlockProcessor) {
		if logger != nil {
			bp.logger = logger
		}
	}
}

// NewBlockProcessor 创建区块处理器
func NewBlockProcessor(chatModel model.ToolCallingChatModel, options ...BlockProcessorOption) *BlockProcessor {
	bp := &BlockProcessor{
		chatModel:  chatModel,
		dispatcher: NewDispatcher(),
		segmenter:  parser.NewProjectSegmenter(),
		logger:     log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(bp)
	}
	return bp
}

// ProcessBlocks 处理全部非空区块，结果按固定区块顺序返回。
// 单个区块失败降级为空结果，服务不可用则整体失败。
func (bp *BlockProcessor) ProcessBlocks(ctx context.Context, blocks *types.BlockSet) ([]types.BlockOutcome, error) {
	var (
		names []string
		tasks []Task[types.BlockResult]
	)

	for _, name := range blockOrder {
		name := name
		switch name {
		case "projects":
			if len(blocks.Projects) == 0 {
				continue
			}
			segments := bp.projectSegments(blocks.Projects)
			tasks = append(tasks, func(taskCtx context.Context) (types.BlockResult, error) {
				return bp.processProjects(taskCtx, segments)
			})
		default:
			content := blockContent(blocks, name)
			if strings.TrimSpace(content) == "" {
				continue
			}
			tasks = append(tasks, func(taskCtx context.Context) (types.BlockResult, error) {
				return bp.processPlainBlock(taskCtx, name, content)
			})
		}
		names = append(names, name)
	}

	if len(tasks) == 0 {
		return nil, nil
	}

	bp.logger.Printf("开始处理%d个区块", len(tasks))
	results, err := Dispatch(ctx, bp.dispatcher, tasks, func(error) types.BlockResult { return types.BlockResult{} })
	if err != nil {
		return nil, err
	}

	outcomes := make([]types.BlockOutcome, len(results))
	for i, result := range results {
		outcomes[i] = types.BlockOutcome{Block: names[i], Result: result}
	}
	return outcomes, nil
}

// projectSegments 上游已给出项目数组时直接使用，否则对拼接文本做切分
func (bp *BlockProcessor) projectSegments(projects []string) []string {
	var segments []string
	for _, project := range projects {
		if p := strings.TrimSpace(project); p != "" {
			segments = append(segments, p)
		}
	}
	if len(segments) > 1 {
		return segments
	}
	return bp.segmenter.Segment(strings.Join(segments, "\n"))
}

// processPlainBlock 非projects区块: 单次调用，区块专属温度
func (bp *BlockProcessor) processPlainBlock(ctx context.Context, name, content string) (types.BlockResult, error) {
	reply, err := llm.Ask(ctx, bp.chatModel, blockPrompt(name, content),
		model.WithTemperature(temperatureForBlock(name)))
	if err != nil {
		return types.BlockResult{}, err
	}

	var result types.BlockResult
	if err := llm.RecoverInto(reply, &result); err != nil {
		return types.BlockResult{}, fmt.Errorf("解析%s区块回复失败: %w", name, err)
	}
	return result, nil
}

// processProjects 每个项目片段独立抽取，失败片段降级为空，最后合并
func (bp *BlockProcessor) processProjects(ctx context.Context, segments []string) (types.BlockResult, error) {
	if len(segments) == 0 {
		return types.BlockResult{}, nil
	}

	tasks := make([]Task[types.BlockResult], len(segments))
	for i, segment := range segments {
		segment := segment
		tasks[i] = func(taskCtx context.Context) (types.BlockResult, error) {
			return bp.processSingleProject(taskCtx, segment)
		}
	}

	bp.logger.Printf("projects区块切分为%d个项目片段", len(segments))
	results, err := Dispatch(ctx, bp.dispatcher, tasks, func(error) types.BlockResult { return types.BlockResult{} })
	if err != nil {
		return types.BlockResult{}, err
	}
	return mergeProjectResults(results), nil
}

func (bp *BlockProcessor) processSingleProject(ctx context.Context, segment string) (types.BlockResult, error) {
	reply, err := llm.Ask(ctx, bp.chatModel, singleProjectPrompt(segment),
		model.WithTemperature(TemperatureProjects))
	if err != nil {
		return types.BlockResult{}, err
	}

	var result types.BlockResult
	if err := llm.RecoverInto(reply, &result); err != nil {
		return types.BlockResult{}, fmt.Errorf("解析项目片段回复失败: %w", err)
	}
	return result, nil
}

func blockContent(blocks *types.BlockSet, name string) string {
	switch name {
	case "skills":
		return blocks.Skills
	case "education":
		return blocks.Education
	case "languages":
		return blocks.Languages
	case "summary":
		return blocks.Summary
	}
	return ""
}

// mergeProjectResults 合并所有项目片段的结果:
// 技能按名去重，职位按(标题,项目)去重，语言按(语言,等级)去重，
// 地点和经验取最高频（并列时取先出现者），出差/远程意愿做或运算。
func mergeProjectResults(results []types.BlockResult) types.BlockResult {
	var merged types.BlockResult
	var locations, experiences []string

	skillSeen := make(map[string]bool)
	roleSeen := make(map[string]bool)
	langSeen := make(map[string]bool)

	for _, result := range results {
		for _, skill := range result.Skills {
			if !skillSeen[skill.Name] {
				skillSeen[skill.Name] = true
				merged.Skills = append(merged.Skills, skill)
			}
		}
		for _, role := range result.Roles {
			key := role.Title + "\x00" + role.Project
			if !roleSeen[key] {
				roleSeen[key] = true
				merged.Roles = append(merged.Roles, role)
			}
		}
		for _, lang := range result.Languages {
			key := lang.Language + "\x00" + lang.Level
			if !langSeen[key] {
				langSeen[key] = true
				merged.Languages = append(merged.Languages, lang)
			}
		}
		if result.Location != "" {
			locations = append(locations, result.Location)
		}
		if result.Experience != "" {
			experiences = append(experiences, result.Experience)
		}
		merged.ReadyToRemote = merged.ReadyToRemote || result.ReadyToRemote
		merged.ReadyToTrip = merged.ReadyToTrip || result.ReadyToTrip
	}

	merged.Location = mostFrequent(locations)
	merged.Experience = mostFrequent(experiences)
	return merged
}

// mostFrequent 返回出现次数最多的值，并列时取最先出现的
func mostFrequent(values []string) string {
	if len(values) == 0 {
		return ""
	}

	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	best := values[0]
	for _, v := range values {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
