package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"profile-agent-go/internal/config"
	"profile-agent-go/internal/constants"
	"profile-agent-go/internal/logger"
	"profile-agent-go/internal/processor"
	"profile-agent-go/internal/storage"
	"profile-agent-go/internal/types"
	"profile-agent-go/pkg/utils"
)

var (
	// ErrUnsupportedFileType 上传文件扩展名不在支持列表中
	ErrUnsupportedFileType = errors.New("不支持的文件类型")
	// ErrFileTooLarge 上传文件超出大小限制
	ErrFileTooLarge = errors.New("文件超出大小限制")
)

// ProfileHandler 档案分析处理器，负责协调上传文件的分析流程
type ProfileHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	pipeline *processor.Pipeline
}

// NewProfileHandler 创建档案分析处理器
func NewProfileHandler(
	cfg *config.Config,
	storage *storage.Storage,
	pipeline *processor.Pipeline,
) *ProfileHandler {
	return &ProfileHandler{
		cfg:      cfg,
		storage:  storage,
		pipeline: pipeline,
	}
}

// AnalyzeResponse 档案分析响应
type AnalyzeResponse struct {
	AnalysisID string                  `json:"analysis_id"`
	FileMD5    string                  `json:"file_md5"`
	FromCache  bool                    `json:"from_cache"`
	DurationMS int64                   `json:"duration_ms"`
	Profile    *types.CandidateProfile `json:"profile"`
}

// HandleAnalyze 处理单个文档的分析请求。
// 命中Redis缓存时直接返回历史结果；否则执行完整流水线，
// 并尽力归档原始文件、落库分析记录、发布完成事件。
func (h *ProfileHandler) HandleAnalyze(ctx context.Context, reader io.Reader, fileSize int64,
	filename string) (*AnalyzeResponse, error) {

	// 0. 校验扩展名和大小
	ext := strings.ToLower(filepath.Ext(filename))
	if !constants.SupportedUploadExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, ext)
	}
	if fileSize > constants.MaxUploadSizeBytes {
		return nil, fmt.Errorf("%w: %d字节", ErrFileTooLarge, fileSize)
	}

	// 1. 读取文件内容并计算MD5 (reader只能读一次，后续归档需复用字节)
	fileBytes, err := io.ReadAll(io.LimitReader(reader, constants.MaxUploadSizeBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}
	if len(fileBytes) > constants.MaxUploadSizeBytes {
		return nil, fmt.Errorf("%w: 超过%d字节", ErrFileTooLarge, constants.MaxUploadSizeBytes)
	}
	fileMD5 := utils.CalculateMD5(fileBytes)

	// 2. 按文件MD5查缓存，命中则跳过整条流水线
	if cached := h.lookupCachedProfile(ctx, fileMD5); cached != nil {
		logger.Info().
			Str("md5", fileMD5).
			Str("filename", filename).
			Msg("命中分析结果缓存，跳过流水线")
		return &AnalyzeResponse{
			FileMD5:   fileMD5,
			FromCache: true,
			Profile:   cached,
		}, nil
	}

	// 3. 执行分析流水线
	startTime := time.Now()
	profile, err := h.pipeline.Analyze(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		logger.Error().
			Err(err).
			Str("md5", fileMD5).
			Str("filename", filename).
			Msg("档案分析失败")
		return nil, err
	}
	duration := time.Since(startTime)

	// 4. 生成UUIDv7作为分析ID
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成UUIDv7失败: %w", err)
	}
	analysisID := uuidV7.String()

	// 5. 归档与事件均为尽力而为，失败不影响主响应
	h.archiveAndNotify(ctx, analysisID, filename, ext, fileMD5, fileBytes, profile, duration)

	logger.Info().
		Str("analysis_id", analysisID).
		Str("md5", fileMD5).
		Int("skills", len(profile.Skills)).
		Int("roles", len(profile.Roles)).
		Dur("duration", duration).
		Msg("档案分析完成")

	return &AnalyzeResponse{
		AnalysisID: analysisID,
		FileMD5:    fileMD5,
		DurationMS: duration.Milliseconds(),
		Profile:    profile,
	}, nil
}

// lookupCachedProfile 查询Redis中的历史分析结果，查询失败按未命中处理
func (h *ProfileHandler) lookupCachedProfile(ctx context.Context, fileMD5 string) *types.CandidateProfile {
	if h.storage == nil || h.storage.Redis == nil {
		return nil
	}
	profile, err := h.storage.Redis.GetProfile(ctx, fileMD5)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn().
				Err(err).
				Str("md5", fileMD5).
				Msg("查询Redis分析结果缓存失败")
		}
		return nil
	}
	return profile
}

// archiveAndNotify 完成分析后的旁路落地：MinIO归档、MySQL记录、事件发布、Redis缓存
func (h *ProfileHandler) archiveAndNotify(ctx context.Context, analysisID, filename, ext, fileMD5 string,
	fileBytes []byte, profile *types.CandidateProfile, duration time.Duration) {

	if h.storage == nil {
		return
	}

	var objectKey string
	if h.storage.MinIO != nil {
		key, err := h.storage.MinIO.ArchiveOriginal(ctx, analysisID, ext, bytes.NewReader(fileBytes), int64(len(fileBytes)))
		if err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("归档原始文件到MinIO失败")
		} else {
			objectKey = key
		}
		if _, err := h.storage.MinIO.ArchiveProfile(ctx, analysisID, profile); err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("归档分析结果到MinIO失败")
		}
	}

	if h.storage.MySQL != nil {
		record, err := storage.NewAnalysisRecord(analysisID, filename, fileMD5, objectKey, profile, duration)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("构建分析记录失败")
		} else if err := h.storage.MySQL.SaveAnalysisRecord(ctx, record); err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("保存分析记录到MySQL失败")
		}
	}

	if h.storage.RabbitMQ != nil {
		event := &types.AnalyzedEvent{
			AnalysisID: analysisID,
			Filename:   filename,
			FileMD5:    fileMD5,
			SkillCount: len(profile.Skills),
			RoleCount:  len(profile.Roles),
			Experience: profile.Experience,
			DurationMS: duration.Milliseconds(),
		}
		if err := h.storage.RabbitMQ.PublishAnalyzedEvent(ctx, event); err != nil {
			logger.Warn().
				Err(err).
				Str("analysis_id", analysisID).
				Msg("发布分析完成事件失败")
		}
	}

	if h.storage.Redis != nil {
		if err := h.storage.Redis.SaveProfile(ctx, fileMD5, profile); err != nil {
			logger.Warn().
				Err(err).
				Str("md5", fileMD5).
				Msg("写入Redis分析结果缓存失败")
		}
	}
}
