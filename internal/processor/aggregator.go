package processor

import (
	"context"
	"io"
	"log"
	"sort"

	"github.com/cloudwego/eino/components/model"

	"profile-agent-go/internal/types"
)

// ResultAggregator 把各区块的抽取结果汇总成最终候选人档案:
// 收集去重 → 技能合并 → 经验核对 → 岗位推荐 → 技能排序。
// 汇总阶段的神谕调用都是增强性质的，失败一律降级，不会让请求失败。
type ResultAggregator struct {
	merger      *SkillMerger
	analyzer    *ExperienceAnalyzer
	recommender *JobRecommender
	logger      *log.Logger
}

// AggregatorOption 汇总器配置选项
type AggregatorOption func(*ResultAggregator)

// WithAggregatorLogger 设置调试日志器
func WithAggregatorLogger(logger *log.Logger) AggregatorOption {
	return func(a *ResultAggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithSkillMerger 替换技能合并器
func WithSkillMerger(m *SkillMerger) AggregatorOption {
	return func(a *ResultAggregator) {
		if m != nil {
			a.merger = m
		}
	}
}

// WithJobRecommender 替换岗位推荐器
func WithJobRecommender(r *JobRecommender) AggregatorOption {
	return func(a *ResultAggregator) {
		if r != nil {
			a.recommender = r
		}
	}
}

// NewResultAggregator 创建结果汇总器
func NewResultAggregator(chatModel model.ToolCallingChatModel, options ...AggregatorOption) *ResultAggregator {
	a := &ResultAggregator{
		merger:      NewSkillMerger(chatModel),
		analyzer:    NewExperienceAnalyzer(),
		recommender: NewJobRecommender(chatModel),
		logger:      log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// collectedData 收集阶段的中间结果
type collectedData struct {
	skills      []types.Skill
	roles       []types.Role
	languages   []types.Language
	location    string
	experiences []string
	anyRemote   bool
	anyTrip     bool
}

// Aggregate 汇总区块结果为最终档案
func (a *ResultAggregator) Aggregate(ctx context.Context, outcomes []types.BlockOutcome) *types.CandidateProfile {
	collected := collect(outcomes)

	a.logger.Printf("开始汇总: %d技能 %d职位 %d语言", len(collected.skills), len(collected.roles), len(collected.languages))

	profile := &types.CandidateProfile{
		Skills:        a.merger.Merge(ctx, collected.skills),
		Roles:         collected.roles,
		Languages:     collected.languages,
		Location:      collected.location,
		Experience:    a.analyzer.Analyze(collected.experiences, collected.roles),
		ReadyToRemote: collected.anyRemote,
		ReadyToTrip:   collected.anyTrip,
	}

	profile.Recommendations = a.recommender.Recommend(ctx, profile)

	// 分数降序，同分保持原有相对顺序
	sort.SliceStable(profile.Skills, func(i, j int) bool {
		return profile.Skills[i].Score > profile.Skills[j].Score
	})

	return profile
}

// collect 跨区块收集: 职位按(标题,项目)去重，语言按(语言,等级)去重，
// 技能原样串联（合并交给SkillMerger），地点取最高频。
func collect(outcomes []types.BlockOutcome) collectedData {
	var data collectedData
	var locations []string

	roleSeen := make(map[string]bool)
	langSeen := make(map[string]bool)

	for _, outcome := range outcomes {
		result := outcome.Result
		data.skills = append(data.skills, result.Skills...)

		for _, role := range result.Roles {
			key := role.Title + "\x00" + role.Project
			if !roleSeen[key] {
				roleSeen[key] = true
				data.roles = append(data.roles, role)
			}
		}
		for _, lang := range result.Languages {
			key := lang.Language + "\x00" + lang.Level
			if !langSeen[key] {
				langSeen[key] = true
				data.languages = append(data.languages, lang)
			}
		}

		if result.Location != "" {
			locations = append(locations, result.Location)
		}
		if result.Experience != "" {
			data.experiences = append(data.experiences, result.Experience)
		}
		data.anyRemote = data.anyRemote || result.ReadyToRemote
		data.anyTrip = data.anyTrip || result.ReadyToTrip
	}

	data.location = mostFrequent(locations)
	return data
}
