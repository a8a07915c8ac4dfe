package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"profile-agent-go/internal/config"
	"profile-agent-go/internal/types"
)

// ObjectStorage 对象存储接口
type ObjectStorage interface {
	// ArchiveOriginal 归档上传的原始简历文件
	ArchiveOriginal(ctx context.Context, analysisID, fileExt string, reader io.Reader, fileSize int64) (string, error)

	// ArchiveProfile 归档分析结果JSON
	ArchiveProfile(ctx context.Context, analysisID string, profile *types.CandidateProfile) (string, error)

	// GetOriginal 下载归档的原始简历文件
	GetOriginal(ctx context.Context, objectKey string) ([]byte, error)

	// GetPresignedURL 获取预签名下载URL
	GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// 确保MinIO实现了ObjectStorage接口
var _ ObjectStorage = (*MinIO)(nil)

// MinIO 提供对象存储功能。
// 原始简历放在 originals/ 前缀下，分析结果JSON放在 profiles/ 前缀下。
type MinIO struct {
	client *minio.Client
	cfg    *config.MinIOConfig
	bucket string
	logger *log.Logger
}

// NewMinIO 创建MinIO客户端
func NewMinIO(cfg *config.MinIOConfig, logger *log.Logger) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	logger.Printf("[MinIO] Initializing MinIO client with endpoint: %s, bucket: %s", cfg.Endpoint, cfg.BucketName)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Printf("[MinIO] Initialization failed: %v", err)
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	bucket := cfg.BucketName
	if bucket == "" {
		bucket = "resumes"
	}

	m := &MinIO{
		client: client,
		cfg:    cfg,
		bucket: bucket,
		logger: logger,
	}

	if err := m.ensureBucketExists(bucket, cfg.Location); err != nil {
		logger.Printf("[MinIO] Failed to ensure bucket %s exists: %v", bucket, err)
		return nil, fmt.Errorf("确保存储桶 %s 存在失败: %w", bucket, err)
	}

	logger.Printf("[MinIO] Client initialized successfully for endpoint: %s", cfg.Endpoint)
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(bucketName, location string) error {
	exists, err := m.client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if !exists {
		m.logger.Printf("[MinIO] Bucket %s does not exist, attempting to create...", bucketName)
		if err := m.client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
			return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
		}
		m.logger.Printf("[MinIO] Bucket %s created successfully.", bucketName)
	}
	return nil
}

// ArchiveOriginal 归档上传的原始简历文件，返回对象键
func (m *MinIO) ArchiveOriginal(ctx context.Context, analysisID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	objectKey := fmt.Sprintf("originals/%s%s", analysisID, fileExt)
	contentType := getContentType(fileExt)

	info, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, fileSize,
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		m.logger.Printf("[MinIO] Error uploading %s: %v", objectKey, err)
		return "", fmt.Errorf("归档原始文件 %s 失败: %w", objectKey, err)
	}

	m.logger.Printf("[MinIO] Archived original %s, ETag: %s, Size: %d", objectKey, info.ETag, info.Size)
	return objectKey, nil
}

// ArchiveProfile 归档分析结果JSON，返回对象键
func (m *MinIO) ArchiveProfile(ctx context.Context, analysisID string, profile *types.CandidateProfile) (string, error) {
	objectKey := fmt.Sprintf("profiles/%s.json", analysisID)

	data, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("序列化分析结果失败: %w", err)
	}

	_, err = m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		m.logger.Printf("[MinIO] Error uploading %s: %v", objectKey, err)
		return "", fmt.Errorf("归档分析结果 %s 失败: %w", objectKey, err)
	}

	m.logger.Printf("[MinIO] Archived profile %s, Size: %d", objectKey, len(data))
	return objectKey, nil
}

// GetOriginal 下载归档的原始简历文件
func (m *MinIO) GetOriginal(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 失败: %w", m.bucket, objectKey, err)
	}
	defer obj.Close()

	stat, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("获取对象 %s/%s 状态失败: %w", m.bucket, objectKey, err)
	}
	m.logger.Printf("[MinIO] Object %s/%s stats: Size=%d, ContentType=%s", m.bucket, objectKey, stat.Size, stat.ContentType)

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s/%s 数据失败: %w", m.bucket, objectKey, err)
	}
	return data, nil
}

// GetPresignedURL 获取预签名下载URL
func (m *MinIO) GetPresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("生成MinIO预签名URL失败: %w", err)
	}
	return presignedURL.String(), nil
}

// 获取内容类型
func getContentType(ext string) string {
	ext = strings.ToLower(ext)
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
