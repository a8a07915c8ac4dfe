package types

import (
	"errors"
	"fmt"
)

// OracleUnavailableError 神谕服务不可达（探活失败、连接拒绝、超时、非2xx）。
// 这是唯一会让整个请求以503收尾的错误类别。
type OracleUnavailableError struct {
	Endpoint string
	Reason   string
	Err      error
}

func (e *OracleUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM服务不可用 (endpoint=%s): %s: %v", e.Endpoint, e.Reason, e.Err)
	}
	return fmt.Sprintf("LLM服务不可用 (endpoint=%s): %s", e.Endpoint, e.Reason)
}

func (e *OracleUnavailableError) Unwrap() error { return e.Err }

// IsOracleUnavailable 判断错误链上是否存在服务不可用错误
func IsOracleUnavailable(err error) bool {
	var target *OracleUnavailableError
	return errors.As(err, &target)
}

// RecoveryError JSON恢复失败，保留原始回复文本供排查
type RecoveryError struct {
	Raw string
	Err error
}

func (e *RecoveryError) Error() string {
	raw := e.Raw
	if len(raw) > 120 {
		raw = raw[:120] + "..."
	}
	return fmt.Sprintf("无法从回复中恢复JSON: %v (原文: %q)", e.Err, raw)
}

func (e *RecoveryError) Unwrap() error { return e.Err }

// DurationParseError 工期文本中没有任何可识别的时间单位
type DurationParseError struct {
	Text string
}

func (e *DurationParseError) Error() string {
	return fmt.Sprintf("无法从文本解析工期: %q", e.Text)
}

// ValidationError 入参或上游数据校验失败
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 校验失败: %s", e.Field, e.Reason)
}
