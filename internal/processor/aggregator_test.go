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

func TestAggregate(t *testing.T) {
	// 第一条响应给技能合并，第二条给职位推荐
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `[
			{"name": "Go", "score": 95, "merged_names": "Go, Golang", "merge_reason": "同一语言"},
			{"name": "Docker", "score": 80}
		]`},
		llm.MockResponse{Content: `{"recommendations": [
			{"title": "Backend Engineer", "score": 88.6, "category": ["engineering"], "reason": "深厚的Go经验"}
		]}`},
	)
	aggregator := NewResultAggregator(mock)

	outcomes := []types.BlockOutcome{
		{Block: "projects", Result: types.BlockResult{
			Skills:     []types.Skill{{Name: "Go", Score: 90}, {Name: "Golang", Score: 95}},
			Roles:      []types.Role{{Title: "Developer", Project: "Alpha", Duration: "2 years"}},
			Location:   "Yerevan",
			Experience: "2 years",
		}},
		{Block: "skills", Result: types.BlockResult{
			Skills: []types.Skill{{Name: "Docker", Score: 80}},
			Roles:  []types.Role{{Title: "Developer", Project: "Alpha", Duration: "2 years"}},
		}},
		{Block: "languages", Result: types.BlockResult{
			Languages:     []types.Language{{Language: "English", Level: "C1"}},
			ReadyToRemote: true,
		}},
	}

	profile := aggregator.Aggregate(context.Background(), outcomes)
	require.NotNil(t, profile)

	require.Len(t, profile.Skills, 2)
	assert.Equal(t, "Go", profile.Skills[0].Name, "技能按分数降序")
	assert.Equal(t, 95, profile.Skills[0].Score)
	assert.Equal(t, "Go, Golang", profile.Skills[0].MergedNames)

	require.Len(t, profile.Roles, 1, "跨区块重复职位去重")
	require.Len(t, profile.Languages, 1)
	assert.Equal(t, "Yerevan", profile.Location)
	assert.Equal(t, "2 years", profile.Experience)
	assert.True(t, profile.ReadyToRemote)
	assert.False(t, profile.ReadyToTrip)

	require.Len(t, profile.Recommendations, 1)
	assert.Equal(t, "Backend Engineer", profile.Recommendations[0].Title)
	assert.Equal(t, 89, profile.Recommendations[0].Score, "推荐分数四舍五入取整")
	assert.Equal(t, []string{"engineering"}, profile.Recommendations[0].Category)
}

func TestAggregateSkillSorting(t *testing.T) {
	// 三个不同名技能: 合并响应保持原样，排序按分数降序且同分稳定
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `[
			{"name": "A", "score": 50},
			{"name": "B", "score": 90},
			{"name": "C", "score": 50}
		]`},
		llm.MockResponse{Error: errors.New("推荐不可用")},
	)
	aggregator := NewResultAggregator(mock)

	profile := aggregator.Aggregate(context.Background(), []types.BlockOutcome{
		{Block: "skills", Result: types.BlockResult{Skills: []types.Skill{
			{Name: "A", Score: 50}, {Name: "B", Score: 90}, {Name: "C", Score: 50},
		}}},
	})

	require.Len(t, profile.Skills, 3)
	assert.Equal(t, []string{"B", "A", "C"},
		[]string{profile.Skills[0].Name, profile.Skills[1].Name, profile.Skills[2].Name},
		"同分技能保持原有相对顺序")
	assert.Nil(t, profile.Recommendations, "推荐失败时降级为空")
}

func TestAggregateEmpty(t *testing.T) {
	mock := llm.NewMockChatClient(
		// 没有技能时不触发合并调用，唯一的调用来自职位推荐
		llm.MockResponse{Content: `{"recommendations": []}`},
	)
	aggregator := NewResultAggregator(mock)

	profile := aggregator.Aggregate(context.Background(), nil)
	require.NotNil(t, profile)
	assert.Nil(t, profile.Skills)
	assert.Equal(t, "0 months", profile.Experience, "没有任何经验信息时推算为0")
	assert.Equal(t, 1, mock.CallCount())
}

func TestCollectLocationFrequency(t *testing.T) {
	outcomes := []types.BlockOutcome{
		{Result: types.BlockResult{Location: "Berlin"}},
		{Result: types.BlockResult{Location: "Yerevan"}},
		{Result: types.BlockResult{Location: "Yerevan"}},
	}
	data := collect(outcomes)
	assert.Equal(t, "Yerevan", data.location)

	tied := collect([]types.BlockOutcome{
		{Result: types.BlockResult{Location: "Berlin"}},
		{Result: types.BlockResult{Location: "Yerevan"}},
	})
	assert.Equal(t, "Berlin", tied.location, "并列时取最先出现的地点")
}
