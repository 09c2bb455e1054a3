package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"log/slog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	SetLevel("DEBUG")
	assert.Equal(t, slog.LevelDebug, Level())
	SetLevel("warning")
	assert.Equal(t, slog.LevelWarn, Level())
	SetLevel("bogus")
	assert.Equal(t, slog.LevelInfo, Level())
}

func TestSetFileOutputFansOut(t *testing.T) {
	defer SetOutput(os.Stdout)

	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "netscope.log")
	f, err := SetFileOutput(&console, path)
	require.NoError(t, err)
	require.NotNil(t, f)
	defer f.Close()

	Infof("scan finished count=%d", 3)

	assert.Contains(t, console.String(), "scan finished count=3")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(raw)), "{"))
	assert.Contains(t, string(raw), `"msg":"scan finished count=3"`)
}

func TestSetFileOutputEmptyPath(t *testing.T) {
	f, err := SetFileOutput(nil, "  ")
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestLLMDump(t *testing.T) {
	var buf bytes.Buffer
	SetLLMWriter(&buf)
	defer SetLLMWriter(nil)
	EnableLLMPayloadDump(true)
	defer EnableLLMPayloadDump(false)

	LogLLMRequest("openai", "sentiment", "sys", "user text", `{"model":"x"}`)
	LogLLMResponse("openai", "sentiment", `{"rating":4}`)

	out := buf.String()
	assert.Contains(t, out, "[LLM][request][openai][sentiment]")
	assert.Contains(t, out, "--- PAYLOAD ---")
	assert.Contains(t, out, "[LLM][response][openai][sentiment]")
	assert.Contains(t, out, `{"rating":4}`)
}
