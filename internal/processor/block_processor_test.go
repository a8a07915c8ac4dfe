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

// sequentialProcessor 并发上限为1，让脚本化响应与区块顺序严格对应
func sequentialProcessor(mock *llm.MockChatClient) *BlockProcessor {
	return NewBlockProcessor(mock, WithBlockDispatcher(NewDispatcher(WithConcurrencyCeiling(1))))
}

func TestProcessBlocksOrderAndSkip(t *testing.T) {
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{"skills": [{"name": "Go", "score": 90}]}`},
		llm.MockResponse{Content: `{"languages": [{"language": "English", "level": "C1"}]}`},
	)
	bp := sequentialProcessor(mock)

	blocks := &types.BlockSet{
		Skills:    "Go, Docker, Kubernetes",
		Languages: "English - C1",
		// projects、education、summary 为空，应被跳过
	}

	outcomes, err := bp.ProcessBlocks(context.Background(), blocks)
	require.NoError(t, err)
	require.Len(t, outcomes, 2, "空区块不应产生结果")

	assert.Equal(t, "skills", outcomes[0].Block, "区块按固定顺序返回")
	assert.Equal(t, "languages", outcomes[1].Block)
	assert.Equal(t, "Go", outcomes[0].Result.Skills[0].Name)
	assert.Equal(t, "English", outcomes[1].Result.Languages[0].Language)

	require.Len(t, mock.Prompts, 2)
	assert.Contains(t, mock.Prompts[0], "Go, Docker, Kubernetes", "提示词应包含区块原文")
}

func TestProcessBlocksEmpty(t *testing.T) {
	mock := llm.NewMockChatClient()
	bp := sequentialProcessor(mock)

	outcomes, err := bp.ProcessBlocks(context.Background(), &types.BlockSet{})
	require.NoError(t, err)
	assert.Nil(t, outcomes)
	assert.Equal(t, 0, mock.CallCount())
}

func TestProcessProjectsPreSplit(t *testing.T) {
	// 上游给出两个项目片段: 每个片段独立调用，再合并去重
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{
			"skills": [{"name": "Go", "score": 90}, {"name": "Docker", "score": 80}],
			"roles": [{"title": "Developer", "project": "Alpha", "duration": "2 years"}],
			"location": "Yerevan",
			"ready_to_remote": true
		}`},
		llm.MockResponse{Content: `{
			"skills": [{"name": "Go", "score": 95}],
			"roles": [{"title": "Developer", "project": "Alpha", "duration": "2 years"}, {"title": "Lead", "project": "Beta", "duration": "1 year"}],
			"location": "Berlin",
			"ready_to_trip": true
		}`},
	)
	bp := sequentialProcessor(mock)

	blocks := &types.BlockSet{Projects: []string{"Project Alpha details", "Project Beta details"}}
	outcomes, err := bp.ProcessBlocks(context.Background(), blocks)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "projects", outcomes[0].Block)

	result := outcomes[0].Result
	require.Len(t, result.Skills, 2, "技能按名称去重，保留首次出现的条目")
	assert.Equal(t, 90, result.Skills[0].Score, "重复技能保留首个片段的分数")
	require.Len(t, result.Roles, 2, "职位按标题+项目去重")
	assert.Equal(t, "Lead", result.Roles[1].Title)
	assert.True(t, result.ReadyToRemote, "远程意愿做或运算")
	assert.True(t, result.ReadyToTrip)

	require.Len(t, mock.Prompts, 2, "两个片段各一次调用")
	assert.Contains(t, mock.Prompts[0], "Project Alpha details")
	assert.Contains(t, mock.Prompts[1], "Project Beta details")
}

func TestProcessBlocksDegradeOnFailure(t *testing.T) {
	mock := llm.NewMockChatClient(
		llm.MockResponse{Error: errors.New("模型超载")},
		llm.MockResponse{Content: `{"summary": "senior engineer"}`},
	)
	bp := sequentialProcessor(mock)

	blocks := &types.BlockSet{Skills: "Go", Summary: "About me"}
	outcomes, err := bp.ProcessBlocks(context.Background(), blocks)
	require.NoError(t, err, "单区块失败不应让整体失败")
	require.Len(t, outcomes, 2)
	assert.Empty(t, outcomes[0].Result.Skills, "失败区块降级为空结果")
	assert.Equal(t, "skills", outcomes[0].Block)
	assert.Equal(t, "summary", outcomes[1].Block)
}

func TestProcessBlocksAbortOnUnavailable(t *testing.T) {
	mock := llm.NewMockChatClient(
		llm.MockResponse{Error: &types.OracleUnavailableError{Endpoint: "http://localhost:1234", Reason: "连接被拒绝"}},
	)
	bp := sequentialProcessor(mock)

	outcomes, err := bp.ProcessBlocks(context.Background(), &types.BlockSet{Skills: "Go"})
	require.Error(t, err)
	assert.True(t, types.IsOracleUnavailable(err), "服务不可用应整体中止")
	assert.Nil(t, outcomes)
}

func TestMergeProjectResults(t *testing.T) {
	results := []types.BlockResult{
		{Location: "Yerevan", Experience: "5 years"},
		{Location: "Berlin", Experience: "5 years"},
		{Location: "Yerevan"},
		{Languages: []types.Language{{Language: "English", Level: "B2"}, {Language: "English", Level: "C1"}}},
		{Languages: []types.Language{{Language: "English", Level: "B2"}}},
	}

	merged := mergeProjectResults(results)
	assert.Equal(t, "Yerevan", merged.Location, "地点取最高频")
	assert.Equal(t, "5 years", merged.Experience)
	assert.Len(t, merged.Languages, 2, "语言按(语言,等级)去重，不同等级保留")
}

func TestMostFrequentTie(t *testing.T) {
	assert.Equal(t, "a", mostFrequent([]string{"a", "b", "b", "a"}), "并列时取最先出现的值")
	assert.Equal(t, "", mostFrequent(nil))
}
