package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/types"
)

func TestParseDurationToMonths(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		months int
	}{
		{"纯年份", "2 years", 24},
		{"年月组合", "1 year 6 months", 18},
		{"缩写单位", "18 mo", 18},
		{"单字母单位", "3y 2m", 38},
		{"带修饰符号", "~3+ years", 36},
		{"大小写混合", "2 Years, 3 Months", 27},
		{"yr缩写", "5 yrs", 60},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			months, err := ParseDurationToMonths(tc.input)
			require.NoError(t, err, "解析不应失败: %s", tc.input)
			assert.Equal(t, tc.months, months, "月数折算错误: %s", tc.input)
		})
	}
}

func TestParseDurationToMonthsNoUnits(t *testing.T) {
	_, err := ParseDurationToMonths("since 2020")
	require.Error(t, err, "没有时间单位的文本必须报错")

	var parseErr *types.DurationParseError
	require.True(t, errors.As(err, &parseErr), "错误类型应为DurationParseError")
	assert.Equal(t, "since 2020", parseErr.Text)
}

func TestCompareDurations(t *testing.T) {
	t.Run("偏差低于阈值视为一致", func(t *testing.T) {
		// 24 vs 22: |22-24|/24 = 8.3%
		cmp, err := CompareDurations("2 years", 22)
		require.NoError(t, err)
		assert.True(t, cmp.Match)
		assert.InDelta(t, 8.33, cmp.DifferencePercent, 0.01)
	})

	t.Run("偏差超过阈值视为不一致", func(t *testing.T) {
		// 60 vs 24: |24-60|/60 = 60%
		cmp, err := CompareDurations("5 years", 24)
		require.NoError(t, err)
		assert.False(t, cmp.Match)
		assert.InDelta(t, 60.0, cmp.DifferencePercent, 0.01)
	})

	t.Run("推算月数为0时偏差恒为0且不一致", func(t *testing.T) {
		cmp, err := CompareDurations("2 years", 0)
		require.NoError(t, err)
		assert.False(t, cmp.Match)
		assert.Equal(t, 0.0, cmp.DifferencePercent)
	})

	t.Run("声称文本不可解析时返回错误", func(t *testing.T) {
		_, err := CompareDurations("a long time", 24)
		require.Error(t, err)
	})
}

func TestFormatMonths(t *testing.T) {
	assert.Equal(t, "0 months", FormatMonths(0))
	assert.Equal(t, "0 months", FormatMonths(-3))
	assert.Equal(t, "1 month", FormatMonths(1))
	assert.Equal(t, "11 months", FormatMonths(11))
	assert.Equal(t, "1 year", FormatMonths(12))
	assert.Equal(t, "1 year, 6 months", FormatMonths(18))
	assert.Equal(t, "2 years", FormatMonths(24))
	assert.Equal(t, "2 years, 1 month", FormatMonths(25))
}
