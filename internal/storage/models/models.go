package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisRecord 一次简历分析的落库记录
type AnalysisRecord struct {
	AnalysisID string `gorm:"type:char(36);primaryKey"`
	Filename   string `gorm:"type:varchar(255)"`
	// FileMD5 上传文件内容的MD5，与Redis缓存键一致
	FileMD5 string `gorm:"type:char(32);index:idx_ar_file_md5"`
	// ObjectKey 原始文件在对象存储中的键
	ObjectKey string `gorm:"type:varchar(1024)"`
	// Profile 完整的分析结果JSON
	Profile    datatypes.JSON `gorm:"type:json"`
	DurationMS int64          `gorm:"type:bigint"`
	CreatedAt  time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_ar_created_at"`
	UpdatedAt  time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// StringToJSON 把JSON字符串转为datatypes.JSON
func StringToJSON(s string) datatypes.JSON {
	return datatypes.JSON(s)
}
