package processor

import (
	"context"
	"encoding/json"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"

	"profile-agent-go/internal/llm"
	"profile-agent-go/internal/types"
)

// JobRecommender 基于最终档案生成岗位推荐。
// 推荐是附加信息: 任何失败都降级为空列表，不影响分析结果。
type JobRecommender struct {
	chatModel model.ToolCallingChatModel
	logger    *log.Logger
}

// JobRecommenderOption 推荐器配置选项
type JobRecommenderOption func(*JobRecommender)

// WithRecommenderLogger 设置调试日志器
func WithRecommenderLogger(logger *log.Logger) JobRecommenderOption {
	return func(r *JobRecommender) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewJobRecommender 创建岗位推荐器
func NewJobRecommender(chatModel model.ToolCallingChatModel, options ...JobRecommenderOption) *JobRecommender {
	r := &JobRecommender{
		chatModel: chatModel,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Recommend 生成5-8条岗位推荐。单次调用，失败返回空列表。
func (r *JobRecommender) Recommend(ctx context.Context, profile *types.CandidateProfile) []types.Recommendation {
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		r.logger.Printf("序列化档案失败，跳过推荐: %v", err)
		return nil
	}

	reply, err := llm.Ask(ctx, r.chatModel, jobRecommendationsPrompt(string(profileJSON)),
		model.WithTemperature(TemperatureRecommendations))
	if err != nil {
		r.logger.Printf("推荐调用失败，返回空列表: %v", err)
		return nil
	}

	var payload struct {
		Recommendations []types.Recommendation `json:"recommendations"`
	}
	if err := llm.RecoverInto(reply, &payload); err != nil {
		r.logger.Printf("推荐回复解析失败，返回空列表: %v", err)
		return nil
	}
	return payload.Recommendations
}
