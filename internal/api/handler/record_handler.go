package handler

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"profile-agent-go/internal/constants"
	"profile-agent-go/internal/logger"
	"profile-agent-go/internal/storage/models"
)

var (
	// ErrAnalysisNotFound 指定的分析ID没有历史记录
	ErrAnalysisNotFound = errors.New("分析记录不存在")
	// ErrRecordStoreDisabled 未配置MySQL，历史记录接口不可用
	ErrRecordStoreDisabled = errors.New("分析记录存储未启用")
)

// AnalysisRecordResponse 历史记录查询响应，配置了MinIO时附带原始文件下载链接
type AnalysisRecordResponse struct {
	Record      *models.AnalysisRecord `json:"record"`
	DownloadURL string                 `json:"download_url,omitempty"`
}

// HandleGetAnalysis 按分析ID查询历史记录
func (h *ProfileHandler) HandleGetAnalysis(ctx context.Context, analysisID string) (*AnalysisRecordResponse, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, ErrRecordStoreDisabled
	}

	record, err := h.storage.MySQL.GetAnalysisRecord(ctx, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
		}
		return nil, fmt.Errorf("查询分析记录失败: %w", err)
	}

	resp := &AnalysisRecordResponse{Record: record}
	if h.storage.MinIO != nil && record.ObjectKey != "" {
		url, err := h.storage.MinIO.GetPresignedURL(ctx, record.ObjectKey, constants.PresignedURLExpiry)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("生成原始文件下载链接失败")
		} else {
			resp.DownloadURL = url
		}
	}
	return resp, nil
}

// HandleListAnalyses 按文件MD5列出历史分析记录，最近的在前
func (h *ProfileHandler) HandleListAnalyses(ctx context.Context, fileMD5 string) ([]models.AnalysisRecord, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, ErrRecordStoreDisabled
	}

	records, err := h.storage.MySQL.ListAnalysisRecordsByMD5(ctx, fileMD5)
	if err != nil {
		return nil, fmt.Errorf("查询分析记录列表失败: %w", err)
	}
	return records, nil
}

// HandleGetOriginal 下载归档的原始简历文件
func (h *ProfileHandler) HandleGetOriginal(ctx context.Context, analysisID string) ([]byte, string, error) {
	if h.storage == nil || h.storage.MySQL == nil {
		return nil, "", ErrRecordStoreDisabled
	}

	record, err := h.storage.MySQL.GetAnalysisRecord(ctx, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", fmt.Errorf("%w: %s", ErrAnalysisNotFound, analysisID)
		}
		return nil, "", fmt.Errorf("查询分析记录失败: %w", err)
	}
	if h.storage.MinIO == nil || record.ObjectKey == "" {
		return nil, "", fmt.Errorf("%w: 原始文件未归档", ErrAnalysisNotFound)
	}

	data, err := h.storage.MinIO.GetOriginal(ctx, record.ObjectKey)
	if err != nil {
		return nil, "", fmt.Errorf("下载归档文件失败: %w", err)
	}
	return data, record.Filename, nil
}
