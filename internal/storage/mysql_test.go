package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"profile-agent-go/internal/config"
	"profile-agent-go/internal/types"
)

// newMockMySQL 基于sqlmock构建MySQL客户端，不经过真实连接与自动迁移
func newMockMySQL(t *testing.T) (*MySQL, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err, "创建sqlmock失败")
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "基于sqlmock打开GORM失败")

	m := &MySQL{
		db:  gormDB,
		cfg: &config.MySQLConfig{Database: "profile_agent"},
	}
	return m, mock
}

func analysisRecordColumns() []string {
	return []string{
		"analysis_id", "filename", "file_md5", "object_key",
		"profile", "duration_ms", "created_at", "updated_at",
	}
}

func TestGetAnalysisRecord(t *testing.T) {
	m, mock := newMockMySQL(t)
	now := time.Now()

	rows := sqlmock.NewRows(analysisRecordColumns()).
		AddRow("a1b2", "resume.pdf", "d41d8cd98f00b204e9800998ecf8427e", "originals/a1b2.pdf",
			[]byte(`{"name":"张三"}`), int64(1200), now, now)
	mock.ExpectQuery("SELECT \\* FROM `analysis_records` WHERE analysis_id = \\?").
		WillReturnRows(rows)

	record, err := m.GetAnalysisRecord(context.Background(), "a1b2")
	require.NoError(t, err, "查询分析记录不应失败")
	assert.Equal(t, "a1b2", record.AnalysisID, "分析ID应匹配")
	assert.Equal(t, "resume.pdf", record.Filename, "文件名应匹配")
	assert.Equal(t, int64(1200), record.DurationMS, "耗时应匹配")
	assert.JSONEq(t, `{"name":"张三"}`, string(record.Profile), "结果JSON应完整保留")

	assert.NoError(t, mock.ExpectationsWereMet(), "应执行预期的SQL")
}

func TestGetAnalysisRecordNotFound(t *testing.T) {
	m, mock := newMockMySQL(t)

	mock.ExpectQuery("SELECT \\* FROM `analysis_records` WHERE analysis_id = \\?").
		WillReturnRows(sqlmock.NewRows(analysisRecordColumns()))

	_, err := m.GetAnalysisRecord(context.Background(), "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "未找到时应返回ErrRecordNotFound")
}

func TestListAnalysisRecordsByMD5(t *testing.T) {
	m, mock := newMockMySQL(t)
	now := time.Now()

	rows := sqlmock.NewRows(analysisRecordColumns()).
		AddRow("newer", "v2.pdf", "abc123", "originals/newer.pdf", []byte(`{}`), int64(900), now, now).
		AddRow("older", "v1.pdf", "abc123", "originals/older.pdf", []byte(`{}`), int64(800), now.Add(-time.Hour), now.Add(-time.Hour))
	mock.ExpectQuery("SELECT \\* FROM `analysis_records` WHERE file_md5 = \\? ORDER BY created_at DESC").
		WillReturnRows(rows)

	records, err := m.ListAnalysisRecordsByMD5(context.Background(), "abc123")
	require.NoError(t, err, "按MD5查询不应失败")
	require.Len(t, records, 2, "应返回两条历史记录")
	assert.Equal(t, "newer", records[0].AnalysisID, "应按时间倒序返回")

	assert.NoError(t, mock.ExpectationsWereMet(), "应执行预期的SQL")
}

func TestSaveAnalysisRecord(t *testing.T) {
	m, mock := newMockMySQL(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `analysis_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record, err := NewAnalysisRecord("a1b2", "resume.pdf", "abc123", "originals/a1b2.pdf",
		&types.CandidateProfile{Location: "Yerevan"}, 1500*time.Millisecond)
	require.NoError(t, err, "构建落库记录不应失败")
	assert.Equal(t, int64(1500), record.DurationMS, "耗时应转换为毫秒")

	err = m.SaveAnalysisRecord(context.Background(), record)
	require.NoError(t, err, "保存分析记录不应失败")
	assert.NoError(t, mock.ExpectationsWereMet(), "应执行预期的SQL")
}
