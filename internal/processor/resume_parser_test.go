package processor

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/types"
)

func sequentialParser(mock *llm.MockChatClient, options ...ResumeParserOption) *ResumeParser {
	options = append([]ResumeParserOption{
		WithResumeParserDispatcher(NewDispatcher(WithConcurrencyCeiling(1))),
	}, options...)
	return NewResumeParser(mock, options...)
}

func TestParseChunksCombine(t *testing.T) {
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{"summary": "Senior Go developer", "skills": "Go, Docker"}`},
		llm.MockResponse{Content: `{"skills": "Kubernetes", "projects": ["Project Alpha: payments platform"]}`},
	)
	parser := sequentialParser(mock)

	chunks := []types.Chunk{
		{Kind: types.ChunkRegular, Content: "<p>About me</p>", Ordinal: 0},
		{Kind: types.ChunkTable, Content: "<table><tr><td>Alpha</td></tr></table>", Ordinal: 1},
	}

	blocks, err := parser.ParseChunks(context.Background(), chunks)
	require.NoError(t, err)

	assert.Equal(t, "Senior Go developer", blocks.Summary)
	assert.Equal(t, "Go, Docker\n\nKubernetes", blocks.Skills, "文本区块以空行拼接")
	require.Len(t, blocks.Projects, 1, "项目数组直接追加")
	assert.Contains(t, blocks.Projects[0], "Project Alpha")

	require.Len(t, mock.Prompts, 2)
	assert.Contains(t, mock.Prompts[0], "<p>About me</p>", "每个分块的内容进入各自的提示词")
}

func TestParseChunksProjectsAsString(t *testing.T) {
	// projects字段有时是字符串而不是数组，宽松解码应两者都接受
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{"projects": "Project Alpha: payments platform"}`},
	)
	parser := sequentialParser(mock)

	blocks, err := parser.ParseChunks(context.Background(), []types.Chunk{
		{Kind: types.ChunkRegular, Content: "<p>x</p>"},
	})
	require.NoError(t, err)
	require.Len(t, blocks.Projects, 1)
	assert.Equal(t, "Project Alpha: payments platform", blocks.Projects[0])
}

func TestParseChunksErrorChunkFallsBackToText(t *testing.T) {
	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{"summary": "plain text resume"}`},
	)
	parser := sequentialParser(mock)

	chunks := []types.Chunk{
		{Kind: types.ChunkError, Content: "John Doe\n\nSenior   Developer"},
	}
	blocks, err := parser.ParseChunks(context.Background(), chunks)
	require.NoError(t, err)
	assert.Equal(t, "plain text resume", blocks.Summary)

	require.Len(t, mock.Prompts, 1)
	assert.Contains(t, mock.Prompts[0], "Senior Developer", "纯文本路径先做清洗再进提示词")
}

func TestParseChunksDegradeAndEmpty(t *testing.T) {
	t.Run("空输入返回空区块集", func(t *testing.T) {
		parser := sequentialParser(llm.NewMockChatClient())
		blocks, err := parser.ParseChunks(context.Background(), nil)
		require.NoError(t, err)
		assert.True(t, blocks.IsEmpty())
	})

	t.Run("单个分块失败不影响其余分块", func(t *testing.T) {
		mock := llm.NewMockChatClient(
			llm.MockResponse{Content: "不是JSON的闲聊"},
			llm.MockResponse{Content: `{"skills": "Go"}`},
		)
		parser := sequentialParser(mock)
		blocks, err := parser.ParseChunks(context.Background(), []types.Chunk{
			{Kind: types.ChunkRegular, Content: "<p>a</p>"},
			{Kind: types.ChunkRegular, Content: "<p>b</p>"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Go", blocks.Skills)
	})

	t.Run("服务不可用整体失败", func(t *testing.T) {
		mock := llm.NewMockChatClient(llm.MockResponse{
			Error: &types.OracleUnavailableError{Endpoint: "http://localhost:1234", Reason: "超时"},
		})
		parser := sequentialParser(mock)
		blocks, err := parser.ParseChunks(context.Background(), []types.Chunk{
			{Kind: types.ChunkRegular, Content: "<p>a</p>"},
		})
		require.Error(t, err)
		assert.True(t, types.IsOracleUnavailable(err))
		assert.Nil(t, blocks)
	})
}

func TestParseTextPaging(t *testing.T) {
	// 构造120行文本触发分页，阈值和页大小用默认值(100/50)
	var sb strings.Builder
	for i := 0; i < 120; i++ {
		fmt.Fprintf(&sb, "line %d content\n", i)
	}

	mock := llm.NewMockChatClient(
		llm.MockResponse{Content: `{"skills": "Go"}`},
		llm.MockResponse{Content: `{"skills": "Docker"}`},
		llm.MockResponse{Content: `{"skills": "Kubernetes"}`},
	)
	parser := sequentialParser(mock)

	blocks, err := parser.ParseText(context.Background(), sb.String())
	require.NoError(t, err)
	assert.Equal(t, 3, mock.CallCount(), "120行按每页50行切成3页")
	assert.Equal(t, "Go\n\nDocker\n\nKubernetes", blocks.Skills)
}

func TestCleanResumeText(t *testing.T) {
	in := "  John Doe  \r\n\r\n\r\n\r\nSenior\t\tDeveloper\r\n"
	assert.Equal(t, "John Doe\n\nSenior Developer", cleanResumeText(in))
	assert.Equal(t, "", cleanResumeText("   \n\t  "))
}

func TestSplitIntoPagesNaturalBreak(t *testing.T) {
	// 第8行是节标题(全大写)，页大小10时断点应落在它之后
	lines := make([]string, 25)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	lines[8] = "EXPERIENCE"

	pages := splitIntoPages(strings.Join(lines, "\n"), 10)
	require.GreaterOrEqual(t, len(pages), 2)
	assert.True(t, strings.HasSuffix(pages[0], "EXPERIENCE"), "页尾应落在自然断点上")
	assert.True(t, strings.HasPrefix(pages[1], "line 9"))
}

func TestIsNaturalBreak(t *testing.T) {
	assert.True(t, isNaturalBreak(""))
	assert.True(t, isNaturalBreak("Skills:"))
	assert.True(t, isNaturalBreak("WORK HISTORY"))
	assert.False(t, isNaturalBreak("worked on payments"))
	assert.False(t, isNaturalBreak("2021"), "纯数字行不算节标题")
}
