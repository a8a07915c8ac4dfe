// Package llm 封装对神谕服务(聊天补全端点)的访问:
// HTTP客户端、探活缓存、回复JSON恢复和业务提示词之外的底层细节都在这里。
package llm

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"profile-agent-go/internal/types"
)

// Shape 期望恢复出的JSON顶层形态
type Shape int

const (
	// ShapeObject 期望 {...}
	ShapeObject Shape = iota
	// ShapeArray 期望 [...]
	ShapeArray
)

// LLM回复常把JSON包在markdown代码围栏里
var fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

var errNoRecoverableJSON = errors.New("尝试了所有恢复策略")

// RecoverJSON 从LLM的自由文本回复中恢复出期望形态的JSON。
// 按顺序尝试: 整体解析 → 代码围栏内部 → 首尾括号边界扫描 → 截断数组修补。
// 全部失败时返回携带原文的RecoveryError。
func RecoverJSON(raw string, shape Shape) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if candidate, ok := validateShape(trimmed, shape); ok {
		return candidate, nil
	}

	if m := fencedBlockRe.FindStringSubmatch(trimmed); m != nil {
		if candidate, ok := validateShape(m[1], shape); ok {
			return candidate, nil
		}
	}

	if candidate, ok := validateShape(sliceByBrackets(trimmed, shape), shape); ok {
		return candidate, nil
	}

	if shape == ShapeArray {
		if candidate, ok := repairTruncatedArray(trimmed); ok {
			return candidate, nil
		}
	}

	return "", &types.RecoveryError{Raw: raw, Err: errNoRecoverableJSON}
}

// RecoverInto 恢复JSON并反序列化到目标。
// 目标为切片指针时期望数组，否则期望对象。
func RecoverInto(raw string, target interface{}) error {
	shape := ShapeObject
	if v := reflect.ValueOf(target); v.Kind() == reflect.Ptr && v.Elem().Kind() == reflect.Slice {
		shape = ShapeArray
	}

	candidate, err := RecoverJSON(raw, shape)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return &types.RecoveryError{Raw: raw, Err: err}
	}
	return nil
}

// validateShape 候选文本必须是合法JSON且顶层形态匹配
func validateShape(candidate string, shape Shape) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", false
	}

	open := byte('{')
	if shape == ShapeArray {
		open = '['
	}
	if candidate[0] != open {
		return "", false
	}
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// sliceByBrackets 取第一个开括号到最后一个闭括号之间的子串
func sliceByBrackets(text string, shape Shape) string {
	openTok, closeTok := "{", "}"
	if shape == ShapeArray {
		openTok, closeTok = "[", "]"
	}

	start := strings.Index(text, openTok)
	end := strings.LastIndex(text, closeTok)
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// repairTruncatedArray 补救被截断的数组回复:
// 砍掉最后一个逗号之后的残缺元素并补上闭括号。
// 没有逗号说明连一个完整元素都凑不齐，放弃。
func repairTruncatedArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	if start == -1 {
		return "", false
	}

	body := text[start:]
	lastComma := strings.LastIndex(body, ",")
	if lastComma == -1 {
		return "", false
	}

	repaired := body[:lastComma] + "]"
	return validateShape(repaired, ShapeArray)
}
