package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/cloudwego/eino/components/model"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/types"
)

// SkillMerger 调用神谕把同义技能合并成单条记录。
// 合并是锦上添花: 神谕失败时静默回退到未合并列表，绝不让请求失败。
type SkillMerger struct {
	chatModel model.ToolCallingChatModel
	logger    *log.Logger
}

// SkillMergerOption 技能合并器配置选项
type SkillMergerOption func(*SkillMerger)

// WithMergerLogger 设置调试日志器
func WithMergerLogger(logger *log.Logger) SkillMergerOption {
	return func(m *SkillMerger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewSkillMerger 创建技能合并器
func NewSkillMerger(chatModel model.ToolCallingChatModel, options ...SkillMergerOption) *SkillMerger {
	m := &SkillMerger{
		chatModel: chatModel,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// rawMergedSkill 合并回复的宽松形态，score缺失时为nil以便校验
type rawMergedSkill struct {
	Name        string   `json:"name"`
	Score       *float64 `json:"score"`
	MergedNames string   `json:"merged_names"`
	MergeReason string   `json:"merge_reason"`
}

// Merge 合并技能列表。
// 空列表直接返回；单个技能不值得一次LLM调用，原样包装返回。
func (m *SkillMerger) Merge(ctx context.Context, skills []types.Skill) []types.Skill {
	if len(skills) == 0 {
		return nil
	}
	if len(skills) == 1 {
		return []types.Skill{{
			Name:  skills[0].Name,
			Score: skills[0].Score,
		}}
	}

	merged, err := m.mergeWithOracle(ctx, skills)
	if err != nil {
		m.logger.Printf("技能合并失败，回退到未合并列表: %v", err)
		return fallbackUnmerged(skills)
	}
	if len(merged) == 0 {
		m.logger.Printf("合并结果为空，回退到未合并列表")
		return fallbackUnmerged(skills)
	}
	return merged
}

func (m *SkillMerger) mergeWithOracle(ctx context.Context, skills []types.Skill) ([]types.Skill, error) {
	lines := make([]string, len(skills))
	for i, skill := range skills {
		lines[i] = fmt.Sprintf("- %s (score: %d)", skill.Name, skill.Score)
	}

	reply, err := llm.Ask(ctx, m.chatModel, skillsMergePrompt(lines),
		model.WithTemperature(TemperatureMerge))
	if err != nil {
		return nil, err
	}

	var raw []rawMergedSkill
	if err := llm.RecoverInto(reply, &raw); err != nil {
		return nil, err
	}
	return m.validate(raw), nil
}

// validate 丢弃缺名或缺分的条目，分数强制取整并限制在[0,100]
func (m *SkillMerger) validate(raw []rawMergedSkill) []types.Skill {
	var valid []types.Skill
	for _, entry := range raw {
		if entry.Name == "" || entry.Score == nil {
			m.logger.Printf("丢弃无效合并条目: name=%q score缺失=%v", entry.Name, entry.Score == nil)
			continue
		}

		score := int(math.Round(*entry.Score))
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		valid = append(valid, types.Skill{
			Name:        entry.Name,
			Score:       score,
			MergedNames: entry.MergedNames,
			MergeReason: entry.MergeReason,
		})
	}
	return valid
}

func fallbackUnmerged(skills []types.Skill) []types.Skill {
	out := make([]types.Skill, len(skills))
	for i, skill := range skills {
		out[i] = types.Skill{Name: skill.Name, Score: skill.Score}
	}
	return out
}
