package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"profile-agent-go/internal/types"
)

// 工期文本解析。上游简历里的duration字段形态五花八门
// ("2 years", "18 mo", "~1 year 6 months", "3+ years")，
// 这里统一折算成月数。

var (
	durationUnitRe  = regexp.MustCompile(`(\d+)\s*(years?|yrs?|yr|y|months?|mos?|mo|m)`)
	decorationRe    = regexp.MustCompile("[+\\-~≈≅±]")
	yearUnitPrefix  = "y"
	monthUnitPrefix = "m"
)

// MatchThresholdPercent 声称经验与推算经验相对偏差低于该值视为一致
const MatchThresholdPercent = 20.0

// ParseDurationToMonths 把自由文本工期折算成月数。
// 文本中没有任何 数字+单位 组合时返回 DurationParseError。
func ParseDurationToMonths(text string) (int, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	normalized = decorationRe.ReplaceAllString(normalized, "")

	matches := durationUnitRe.FindAllStringSubmatch(normalized, -1)
	if len(matches) == 0 {
		return 0, &types.DurationParseError{Text: text}
	}

	total := 0
	for _, m := range matches {
		value, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &types.DurationParseError{Text: text}
		}
		switch {
		case strings.HasPrefix(m[2], yearUnitPrefix):
			total += value * 12
		case strings.HasPrefix(m[2], monthUnitPrefix):
			total += value
		}
	}
	return total, nil
}

// CompareDurations 比较声称经验文本与推算月数。
// 任一侧为0时不做比例计算，直接判不一致且偏差为0。
// 声称文本不可解析时返回错误，比较结果为零值。
func CompareDurations(stated string, calculatedMonths int) (types.DurationComparison, error) {
	statedMonths, err := ParseDurationToMonths(stated)
	if err != nil {
		return types.DurationComparison{}, err
	}

	cmp := types.DurationComparison{
		StatedMonths:     statedMonths,
		CalculatedMonths: calculatedMonths,
	}
	if statedMonths == 0 || calculatedMonths == 0 {
		return cmp, nil
	}

	cmp.DifferencePercent = math.Abs(float64(calculatedMonths-statedMonths)) / float64(statedMonths) * 100
	cmp.Match = cmp.DifferencePercent < MatchThresholdPercent
	return cmp, nil
}

// FormatMonths 把月数渲染成人类可读短语: "0 months", "1 year", "2 years, 3 months"
func FormatMonths(months int) string {
	if months <= 0 {
		return "0 months"
	}

	years := months / 12
	rest := months % 12

	var parts []string
	if years > 0 {
		if years == 1 {
			parts = append(parts, "1 year")
		} else {
			parts = append(parts, fmt.Sprintf("%d years", years))
		}
	}
	if rest > 0 {
		if rest == 1 {
			parts = append(parts, "1 month")
		} else {
			parts = append(parts, fmt.Sprintf("%d months", rest))
		}
	}
	return strings.Join(parts, ", ")
}
