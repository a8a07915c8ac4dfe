package types

import (
	"encoding/json"
	"math"
	"strings"
)

// ChunkKind 分块类型
type ChunkKind string

const (
	// ChunkRegular 普通内容块，由滚动累积器产生
	ChunkRegular ChunkKind = "regular"
	// ChunkTable 表格块，永远独占一个分块
	ChunkTable ChunkKind = "table"
	// ChunkList 列表块 (ul/ol)，与表格同样独占
	ChunkList ChunkKind = "list"
	// ChunkStructuralSplit 超大div按段落拆分出的子块
	ChunkStructuralSplit ChunkKind = "structural_split"
	// ChunkError HTML解析失败时的降级块，内容为原始输入
	ChunkError ChunkKind = "error"
)

// Chunk HTML分块器的输出单元
type Chunk struct {
	Kind    ChunkKind `json:"kind"`
	Content string    `json:"content"`
	Ordinal int       `json:"ordinal"` // 在文档中的顺序，从0开始
	Size    int       `json:"size"`    // 块内内容单元数量
}

// BlockSet 简历解析后的五个标准区块。
// 无论上游返回什么字段，标准化之后有且只有这五个。
type BlockSet struct {
	Projects  []string `json:"projects"`
	Skills    string   `json:"skills"`
	Education string   `json:"education"`
	Languages string   `json:"languages"`
	Summary   string   `json:"summary"`
}

// IsEmpty 所有区块均为空
func (b *BlockSet) IsEmpty() bool {
	return len(b.Projects) == 0 &&
		strings.TrimSpace(b.Skills) == "" &&
		strings.TrimSpace(b.Education) == "" &&
		strings.TrimSpace(b.Languages) == "" &&
		strings.TrimSpace(b.Summary) == ""
}

// ProjectsField 兼容上游把projects返回为字符串或字符串数组两种形态
type ProjectsField []string

func (p *ProjectsField) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*p = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*p = nil
		return nil
	}
	*p = []string{s}
	return nil
}

// Skill 技能条目。合并前MergedNames/MergeReason为空。
type Skill struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	MergedNames string `json:"merged_names"`
	MergeReason string `json:"merge_reason"`
}

// UnmarshalJSON 容忍上游把score返回为浮点数，就近取整
func (s *Skill) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string   `json:"name"`
		Score       *float64 `json:"score"`
		MergedNames string   `json:"merged_names"`
		MergeReason string   `json:"merge_reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.MergedNames = raw.MergedNames
	s.MergeReason = raw.MergeReason
	if raw.Score != nil {
		s.Score = int(math.Round(*raw.Score))
	} else {
		s.Score = 0
	}
	return nil
}

// Role 职位条目，重复判定键为 (Title, Project)
type Role struct {
	Title    string   `json:"title"`
	Project  string   `json:"project"`
	Duration string   `json:"duration"`
	Score    int      `json:"score"`
	Category []string `json:"category"`
}

// UnmarshalJSON 与Skill同理，容忍浮点score
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string   `json:"title"`
		Project  string   `json:"project"`
		Duration string   `json:"duration"`
		Score    *float64 `json:"score"`
		Category []string `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Title = raw.Title
	r.Project = raw.Project
	r.Duration = raw.Duration
	r.Category = raw.Category
	if raw.Score != nil {
		r.Score = int(math.Round(*raw.Score))
	} else {
		r.Score = 0
	}
	return nil
}

// Language 语言条目，重复判定键为 (Language, Level)
type Language struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

// ProjectPeriod 单个项目的工期，按项目名去重后参与经验汇总
type ProjectPeriod struct {
	DurationMonths int    `json:"duration_months"`
	ProjectName    string `json:"project_name"`
	Role           string `json:"role"`
}

// DurationComparison 声称经验与推算经验的比较结果
type DurationComparison struct {
	Match             bool    `json:"match"`
	StatedMonths      int     `json:"stated_months"`
	CalculatedMonths  int     `json:"calculated_months"`
	DifferencePercent float64 `json:"difference_percent"`
}

// BlockResult 单个区块经过神谕抽取后的结构化结果
type BlockResult struct {
	Skills        []Skill    `json:"skills"`
	Roles         []Role     `json:"roles"`
	Languages     []Language `json:"languages"`
	Location      string     `json:"location"`
	Experience    string     `json:"experience"`
	ReadyToRemote bool       `json:"ready_to_remote"`
	ReadyToTrip   bool       `json:"ready_to_trip"`
}

// BlockOutcome 带区块名的结果，保留处理顺序供聚合阶段的"首见优先"规则使用
type BlockOutcome struct {
	Block  string      `json:"block"`
	Result BlockResult `json:"result"`
}

// Recommendation 岗位推荐条目
type Recommendation struct {
	Title    string   `json:"title"`
	Score    int      `json:"score"`
	Category []string `json:"category"`
	Reason   string   `json:"reason"`
}

// UnmarshalJSON 容忍浮点score和字符串形态的category
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title    string        `json:"title"`
		Score    *float64      `json:"score"`
		Category ProjectsField `json:"category"`
		Reason   string        `json:"reason"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Title = raw.Title
	r.Category = []string(raw.Category)
	r.Reason = raw.Reason
	if raw.Score != nil {
		r.Score = int(math.Round(*raw.Score))
	} else {
		r.Score = 0
	}
	return nil
}

// CandidateProfile 流水线的最终产物
type CandidateProfile struct {
	Skills          []Skill          `json:"skills"`
	Roles           []Role           `json:"roles"`
	Languages       []Language       `json:"languages"`
	Location        string           `json:"location"`
	Experience      string           `json:"experience"`
	ReadyToRemote   bool             `json:"ready_to_remote"`
	ReadyToTrip     bool             `json:"ready_to_trip"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AnalyzedEvent 分析完成后发布到消息队列的事件
type AnalyzedEvent struct {
	AnalysisID string `json:"analysis_id"`
	Filename   string `json:"filename"`
	FileMD5    string `json:"file_md5"`
	SkillCount int    `json:"skill_count"`
	RoleCount  int    `json:"role_count"`
	Experience string `json:"experience"`
	DurationMS int64  `json:"duration_ms"`
	Timestamp  string `json:"timestamp"`
}
