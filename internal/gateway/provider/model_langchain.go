package provider

import (
	"context"
	"fmt"
	"strings"

	"netscope/internal/logger"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangchainModelProvider 通过 langchaingo 调用模型，适用于需要 langchaingo 生态（代理、回调）的部署。
type LangchainModelProvider struct {
	id      string
	enabled bool
	llm     llms.Model
}

// NewLangchainModelProvider builds an OpenAI-compatible langchaingo model.
func NewLangchainModelProvider(id string, cfg ModelCfg) (*LangchainModelProvider, error) {
	opts := []openai.Option{openai.WithToken(cfg.APIKey)}
	if m := strings.TrimSpace(cfg.Model); m != "" {
		opts = append(opts, openai.WithModel(m))
	}
	if u := strings.TrimSpace(cfg.APIURL); u != "" {
		opts = append(opts, openai.WithBaseURL(u))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai model: %w", err)
	}
	return NewLangchainModelProviderWith(id, llm), nil
}

// NewLangchainModelProviderWith wraps an existing langchaingo model.
func NewLangchainModelProviderWith(id string, llm llms.Model) *LangchainModelProvider {
	return &LangchainModelProvider{id: id, enabled: llm != nil, llm: llm}
}

func (p *LangchainModelProvider) ID() string    { return p.id }
func (p *LangchainModelProvider) Enabled() bool { return p.enabled }

func (p *LangchainModelProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	if !p.enabled {
		return "", ErrDisabled
	}
	messages := make([]llms.MessageContent, 0, 2)
	if payload.System != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, payload.System))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, payload.User))

	var opts []llms.CallOption
	if payload.ExpectJSON {
		opts = append(opts, llms.WithJSONMode())
	}
	if payload.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(payload.MaxTokens))
	}

	logger.LogLLMRequest(p.id, payload.Purpose, payload.System, payload.User, "")
	resp, err := p.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	out := resp.Choices[0].Content
	logger.LogLLMResponse(p.id, payload.Purpose, out)
	return out, nil
}
