package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/types"
)

func TestCalculateFromRoles(t *testing.T) {
	roles := []types.Role{
		{Title: "Senior Developer", Project: "Polixis (Armenia)", Duration: "1 year, 6 months"},
		// 同一项目的第二个职位不重复计入工期
		{Title: "Team Lead", Project: "Polixis (Armenia)", Duration: "1 year"},
		{Title: "Consultant", Project: "ACME (Switzerland)", Duration: "6 months"},
		// 工期不可解析的职位直接跳过
		{Title: "Advisor", Project: "Ghost Corp", Duration: "a while"},
	}

	analyzer := NewExperienceAnalyzer()
	months, periods := analyzer.CalculateFromRoles(roles)

	assert.Equal(t, 24, months)
	require.Len(t, periods, 2)
	assert.Equal(t, "Polixis (Armenia)", periods[0].ProjectName)
	assert.Equal(t, "Senior Developer", periods[0].Role)
	assert.Equal(t, 18, periods[0].DurationMonths)
	assert.Equal(t, 6, periods[1].DurationMonths)
}

func TestAnalyzeExperience(t *testing.T) {
	roles := []types.Role{
		{Title: "Developer", Project: "A", Duration: "2 years"},
	}

	analyzer := NewExperienceAnalyzer()

	t.Run("没有声称经验时返回推算短语", func(t *testing.T) {
		assert.Equal(t, "2 years", analyzer.Analyze(nil, roles))
	})

	t.Run("声称与推算一致时原样返回声称文本", func(t *testing.T) {
		// 24 vs 26: 偏差约8%
		assert.Equal(t, "26 months", analyzer.Analyze([]string{"26 months"}, roles))
	})

	t.Run("偏差显著时返回两者", func(t *testing.T) {
		got := analyzer.Analyze([]string{"5 years"}, roles)
		assert.Equal(t, "concret 5 years | calculated 2 years", got)
	})

	t.Run("取第一个非空声称经验", func(t *testing.T) {
		got := analyzer.Analyze([]string{"", "  ", "5 years", "3 years"}, roles)
		assert.Equal(t, "concret 5 years | calculated 2 years", got)
	})

	t.Run("声称文本不可解析时原样保留", func(t *testing.T) {
		assert.Equal(t, "many moons", analyzer.Analyze([]string{"many moons"}, roles))
	})

	t.Run("没有任何职位时返回0月", func(t *testing.T) {
		assert.Equal(t, "0 months", analyzer.Analyze(nil, nil))
	})

	t.Run("推算为0时声称经验胜出", func(t *testing.T) {
		// 比较双方任一为0: 不一致但偏差为0，低于阈值，返回声称文本
		assert.Equal(t, "3 years", analyzer.Analyze([]string{"3 years"}, nil))
	})
}
