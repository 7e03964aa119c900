package common

import (
	"sort"
	"strings"
)

// ValidationErrors 字段级校验错误，字段名 → 错误消息。
// 作为 error 使用时拼成一行，序列化时保持 map 形态给前端做内联提示。
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Add 记录一个字段错误
func (e ValidationErrors) Add(field, message string) {
	e[field] = message
}

// OrNil 没有任何错误时返回 nil，方便直接 return
func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
