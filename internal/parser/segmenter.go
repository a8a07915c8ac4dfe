package parser

import (
	"io"
	"log"
	"regexp"
	"strings"
)

// ProjectSegmenter 把连续的项目经历文本切成单个项目片段。
// 三个策略按优先级尝试，第一个产出多段结果的策略胜出:
//  1. 空行对切分
//  2. 关键词行扫描（头衔/公司/地点/月份/年份）
//  3. 年份边界切分
//
// 全部失败时整段文本作为唯一片段返回。
type ProjectSegmenter struct {
	keywords []string
	logger   *log.Logger
}

// ProjectSegmenterOption 切分器配置选项
type ProjectSegmenterOption func(*ProjectSegmenter)

// WithSegmentKeywords 覆盖默认的关键词表
func WithSegmentKeywords(keywords []string) ProjectSegmenterOption {
	return func(s *ProjectSegmenter) {
		if len(keywords) > 0 {
			s.keywords = keywords
		}
	}
}

// WithSegmenterLogger 设置调试日志器
func WithSegmenterLogger(logger *log.Logger) ProjectSegmenterOption {
	return func(s *ProjectSegmenter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// DefaultSegmentKeywords 默认关键词表: 新项目片段通常以这些词开头的行起始
var DefaultSegmentKeywords = []string{
	// 头衔
	"senior", "junior", "developer", "architect", "engineer",
	"manager", "lead", "cto", "head of", "director", "consultant", "specialist",
	// 公司与地点
	"polixis", "armenia", "switzerland", "russia", "moscow",
	// 月份
	"oct", "nov", "dec", "jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep",
	// 年份
	"2020", "2021", "2022", "2023", "2024", "2025",
}

var (
	blankLinePairRe = regexp.MustCompile(`\n\s*\n`)
	yearTokenRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// NewProjectSegmenter 创建项目切分器
func NewProjectSegmenter(options ...ProjectSegmenterOption) *ProjectSegmenter {
	s := &ProjectSegmenter{
		keywords: DefaultSegmentKeywords,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Segment 切分项目经历文本
func (s *ProjectSegmenter) Segment(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}

	if segments := s.splitByBlankLines(trimmed); len(segments) >= 2 {
		s.logger.Printf("空行策略命中: %d段", len(segments))
		return segments
	}
	if segments := s.splitByKeywords(trimmed); len(segments) >= 2 {
		s.logger.Printf("关键词策略命中: %d段", len(segments))
		return segments
	}
	if segments := s.splitByYears(trimmed); len(segments) >= 2 {
		s.logger.Printf("年份策略命中: %d段", len(segments))
		return segments
	}

	s.logger.Printf("无策略命中，整段返回")
	return []string{trimmed}
}

func (s *ProjectSegmenter) splitByBlankLines(text string) []string {
	var segments []string
	for _, part := range blankLinePairRe.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			segments = append(segments, part)
		}
	}
	return segments
}

// splitByKeywords 逐行扫描，含关键词的行开启新片段
func (s *ProjectSegmenter) splitByKeywords(text string) []string {
	var (
		segments []string
		current  []string
	)
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if s.lineStartsProject(lower) && len(current) > 0 {
			segments = append(segments, strings.TrimSpace(strings.Join(current, "\n")))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		if seg := strings.TrimSpace(strings.Join(current, "\n")); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

func (s *ProjectSegmenter) lineStartsProject(lowerLine string) bool {
	if strings.TrimSpace(lowerLine) == "" {
		return false
	}
	for _, keyword := range s.keywords {
		if strings.Contains(lowerLine, keyword) {
			return true
		}
	}
	return false
}

// splitByYears 以四位年份出现位置为边界切分，年份与其后内容归为一段。
// 首个年份之前的引言归入第一段，避免丢内容。
func (s *ProjectSegmenter) splitByYears(text string) []string {
	positions := yearTokenRe.FindAllStringIndex(text, -1)
	if len(positions) < 2 {
		return nil
	}

	var segments []string
	start := 0
	for i := 1; i < len(positions); i++ {
		segment := strings.TrimSpace(text[start:positions[i][0]])
		if segment != "" {
			segments = append(segments, segment)
		}
		start = positions[i][0]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		segments = append(segments, tail)
	}
	return segments
}
