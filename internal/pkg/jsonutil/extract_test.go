package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractObject(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain", `{"rating": 4}`, `{"rating": 4}`, true},
		{"prose", `Sure! {"rating": 4, "confidence": 0.9} hope it helps`, `{"rating": 4, "confidence": 0.9}`, true},
		{"fence", "```json\n{\"recommendations\": [\"a\", \"b}\"]}\n```", `{"recommendations": ["a", "b}"]}`, true},
		{"nested", `x {"a": {"b": 1}} y`, `{"a": {"b": 1}}`, true},
		{"none", "no json here", "", false},
		{"unterminated", `{"a": 1`, "", false},
		{"empty", "  ", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractObject(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPretty(t *testing.T) {
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    2\n  ]\n}", Pretty([]byte(` {"b":1,"a":[2]} `)))
	assert.Equal(t, "not json", Pretty([]byte("not json")))
	assert.Equal(t, "", Pretty([]byte("  ")))
}
