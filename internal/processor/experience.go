package processor

import (
	"fmt"
	"io"
	"log"
	"strings"

	"profile-agent-go/internal/parser"
	"profile-agent-go/internal/types"
)

// ExperienceAnalyzer 核对声称经验与按职位工期推算出的经验。
type ExperienceAnalyzer struct {
	logger *log.Logger
}

// ExperienceAnalyzerOption 经验核对器配置选项
type ExperienceAnalyzerOption func(*ExperienceAnalyzer)

// WithExperienceLogger 设置调试日志器
func WithExperienceLogger(logger *log.Logger) ExperienceAnalyzerOption {
	return func(a *ExperienceAnalyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewExperienceAnalyzer 创建经验核对器
func NewExperienceAnalyzer(options ...ExperienceAnalyzerOption) *ExperienceAnalyzer {
	a := &ExperienceAnalyzer{logger: log.New(io.Discard, "", 0)}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// CalculateFromRoles 按职位工期推算总经验。
// 同一项目只计一次（首次出现的职位胜出），工期不可解析的职位跳过并告警。
func (a *ExperienceAnalyzer) CalculateFromRoles(roles []types.Role) (int, []types.ProjectPeriod) {
	var (
		totalMonths int
		periods     []types.ProjectPeriod
	)
	projectSeen := make(map[string]bool)

	for _, role := range roles {
		if role.Project == "" || projectSeen[role.Project] {
			continue
		}

		months, err := parser.ParseDurationToMonths(role.Duration)
		if err != nil {
			a.logger.Printf("职位工期不可解析，跳过: %s @ %s (%q)", role.Title, role.Project, role.Duration)
			continue
		}

		projectSeen[role.Project] = true
		totalMonths += months
		periods = append(periods, types.ProjectPeriod{
			DurationMonths: months,
			ProjectName:    role.Project,
			Role:           role.Title,
		})
	}
	return totalMonths, periods
}

// Analyze 生成最终经验字符串:
//   - 没有声称经验: 返回推算短语
//   - 声称与推算一致(偏差<20%): 原样返回声称文本
//   - 偏差显著: "concret {声称} | calculated {推算短语}"
func (a *ExperienceAnalyzer) Analyze(statedExperiences []string, roles []types.Role) string {
	calculatedMonths, _ := a.CalculateFromRoles(roles)
	calculatedPhrase := parser.FormatMonths(calculatedMonths)

	stated := firstNonEmpty(statedExperiences)
	if stated == "" {
		return calculatedPhrase
	}

	cmp, err := parser.CompareDurations(stated, calculatedMonths)
	if err != nil {
		// 声称文本本身解析不了就没有比较的余地，原样保留
		a.logger.Printf("声称经验不可解析，原样保留: %q (%v)", stated, err)
		return stated
	}

	if cmp.Match || cmp.DifferencePercent < parser.MatchThresholdPercent {
		return stated
	}
	return fmt.Sprintf("concret %s | calculated %s", stated, calculatedPhrase)
}

func firstNonEmpty(values []string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
