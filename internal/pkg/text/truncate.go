package text

import "unicode/utf8"

// Truncate 按字符数截断，超长时追加 "..."，不会切断多字节字符。
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// Length 返回字符数（非字节数），用于输入长度校验。
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
