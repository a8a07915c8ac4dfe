package constants

import "time"

const (
	// AnalysisResultTTL 分析结果缓存的默认过期时间
	AnalysisResultTTL = 30 * 24 * time.Hour

	// MaxUploadSizeBytes 上传简历文件的大小上限
	MaxUploadSizeBytes = 20 << 20 // 20MB

	// PresignedURLExpiry 原始文件下载链接的有效期
	PresignedURLExpiry = 24 * time.Hour
)

// SupportedUploadExtensions 接受的简历文件扩展名
var SupportedUploadExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}
