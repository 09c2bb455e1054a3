package jsonutil

import (
	"bytes"
	"encoding/json"
)

// Pretty 按原有键顺序以两空格缩进 JSON，用于日志输出；不是合法 JSON 时原样返回。
func Pretty(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
