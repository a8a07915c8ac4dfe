package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/types"
)

func TestSkillMergerEmptyAndSingle(t *testing.T) {
	mock := llm.NewMockChatClient()
	merger := NewSkillMerger(mock)

	assert.Nil(t, merger.Merge(context.Background(), nil), "空列表不产生结果")

	got := merger.Merge(context.Background(), []types.Skill{{Name: "Go", Score: 90, MergedNames: "stale"}})
	require.Len(t, got, 1)
	assert.Equal(t, "Go", got[0].Name)
	assert.Equal(t, 90, got[0].Score)
	assert.Empty(t, got[0].MergedNames, "单技能包装时不保留合并元数据")
	assert.Equal(t, 0, mock.CallCount(), "单个技能不应触发LLM调用")
}

func TestSkillMergerMerge(t *testing.T) {
	mock := llm.NewMockChatClient(llm.MockResponse{Content: `[
		{"name": "Go", "score": 92.4, "merged_names": "Go, Golang", "merge_reason": "同一语言的别名"},
		{"name": "Docker", "score": 150, "merged_names": "", "merge_reason": ""},
		{"name": "", "score": 10},
		{"name": "Ghost"}
	]`})
	merger := NewSkillMerger(mock)

	skills := []types.Skill{
		{Name: "Go", Score: 90},
		{Name: "Golang", Score: 95},
		{Name: "Docker", Score: 80},
	}
	got := merger.Merge(context.Background(), skills)

	require.Len(t, got, 2, "缺名或缺分的条目应被丢弃")
	assert.Equal(t, "Go", got[0].Name)
	assert.Equal(t, 92, got[0].Score, "分数应四舍五入取整")
	assert.Equal(t, "Go, Golang", got[0].MergedNames)
	assert.Equal(t, 100, got[1].Score, "分数应被限制在100以内")

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "- Go (score: 90)", "提示词应列出原始技能")
	assert.Contains(t, mock.Prompts[0], "- Golang (score: 95)")
}

func TestSkillMergerFallback(t *testing.T) {
	skills := []types.Skill{
		{Name: "Go", Score: 90},
		{Name: "Python", Score: 85},
	}

	t.Run("神谕出错时回退", func(t *testing.T) {
		mock := llm.NewMockChatClient(llm.MockResponse{Error: errors.New("boom")})
		got := NewSkillMerger(mock).Merge(context.Background(), skills)
		require.Len(t, got, 2)
		assert.Equal(t, "Go", got[0].Name)
		assert.Equal(t, "Python", got[1].Name)
	})

	t.Run("神谕不可用时同样回退", func(t *testing.T) {
		mock := llm.NewMockChatClient(llm.MockResponse{
			Error: &types.OracleUnavailableError{Endpoint: "http://localhost:1234", Reason: "连接被拒绝"},
		})
		got := NewSkillMerger(mock).Merge(context.Background(), skills)
		assert.Len(t, got, 2)
	})

	t.Run("响应无法恢复为JSON时回退", func(t *testing.T) {
		mock := llm.NewMockChatClient(llm.MockResponse{Content: "抱歉，我无法完成这个任务。"})
		got := NewSkillMerger(mock).Merge(context.Background(), skills)
		assert.Len(t, got, 2)
	})

	t.Run("合并结果为空时回退", func(t *testing.T) {
		mock := llm.NewMockChatClient(llm.MockResponse{Content: `[]`})
		got := NewSkillMerger(mock).Merge(context.Background(), skills)
		assert.Len(t, got, 2)
	})
}
