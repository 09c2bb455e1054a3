package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu          sync.Mutex
	llmLog         *log.Logger
	llmDumpPayload bool
)

// SetLLMWriter 设置模型请求/响应的转储目标；nil 关闭转储。
func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

type llmSection struct {
	Title string
	Body  string
}

func logLLM(kind, provider, purpose string, sections []llmSection) {
	llmMu.Lock()
	logger := llmLog
	llmMu.Unlock()
	if logger == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	for _, tag := range []string{kind, provider, purpose} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	logger.Print(b.String())
}

// LogLLMRequest 记录发送给模型的 system/user 提示词。
func LogLLMRequest(provider, purpose, systemPrompt, userPrompt, payload string) {
	sections := []llmSection{
		{Title: "SYSTEM", Body: systemPrompt},
		{Title: "USER", Body: userPrompt},
	}
	llmMu.Lock()
	dump := llmDumpPayload
	llmMu.Unlock()
	if dump && strings.TrimSpace(payload) != "" {
		sections = append(sections, llmSection{Title: "PAYLOAD", Body: payload})
	}
	logLLM("request", provider, purpose, sections)
}

func LogLLMResponse(provider, purpose, raw string) {
	logLLM("response", provider, purpose, []llmSection{{Title: "RAW", Body: raw}})
}

func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDumpPayload = enabled
	llmMu.Unlock()
}
