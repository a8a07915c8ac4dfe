package tracing

import (
	"strings"
)

const (
	// MaxSQLLength SQL语句作为span属性时的最大长度
	MaxSQLLength = 500

	// MaxRedisLength Redis键作为span属性时的最大长度
	MaxRedisLength = 100

	// MaxDocumentLength 文档内容片段作为span属性时的最大长度
	MaxDocumentLength = 150
)

// piiKeywords 属性名中出现这些关键字时对值做掩码
var piiKeywords = []string{
	"email", "phone", "password", "身份证", "id_card",
	"address", "地址", "name", "姓名", "secret", "token",
}

// SafeAttributeValue 敏感属性掩码，过长属性截断
func SafeAttributeValue(name string, value string, maxLength int) string {
	lowerName := strings.ToLower(name)
	for _, keyword := range piiKeywords {
		if strings.Contains(lowerName, keyword) {
			return MaskPII(value)
		}
	}
	return TruncateString(value, maxLength)
}

// MaskPII 对个人敏感信息掩码，保留首尾便于排查
func MaskPII(value string) string {
	if value == "" {
		return ""
	}

	runes := []rune(value)
	length := len(runes)

	switch {
	case length <= 1:
		return "*"
	case length == 2:
		return string(runes[:1]) + "*"
	case length <= 4:
		return string(runes[:1]) + strings.Repeat("*", length-2) + string(runes[length-1:])
	}
	return string(runes[:2]) + strings.Repeat("*", length-4) + string(runes[length-2:])
}

// TruncateString 超长时保留首尾，中间用...连接
func TruncateString(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}

	half := (maxLength - 3) / 2
	if half < 1 {
		half = 1
	}
	return string(runes[:half]) + "..." + string(runes[len(runes)-half:])
}

// SafeSQL SQL语句截断
func SafeSQL(sql string) string {
	return TruncateString(sql, MaxSQLLength)
}

// SafeRedisKey Redis键截断
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisLength)
}

// SafeDocumentContent 文档内容片段截断
func SafeDocumentContent(content string) string {
	return TruncateString(content, MaxDocumentLength)
}
