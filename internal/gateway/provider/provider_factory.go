package provider

import (
	"fmt"
	"strings"
	"time"

	"netscope/internal/logger"
)

const (
	KindOpenAI    = "openai"
	KindLangchain = "langchain"
)

type ModelCfg struct {
	ID, Kind, APIURL, APIKey, Model string
	Headers                         map[string]string
	Timeout                         time.Duration
	MaxRetries                      int
}

// BuildProviderFromConfig returns nil without error when no API key is
// configured: the service then runs on local heuristics only.
func BuildProviderFromConfig(m ModelCfg) (ModelProvider, error) {
	if strings.TrimSpace(m.APIKey) == "" {
		logger.Warnf("未配置 ai.api_key，AI 接口将只使用本地实现")
		return nil, nil
	}
	id := strings.TrimSpace(m.ID)
	kind := strings.ToLower(strings.TrimSpace(m.Kind))
	if kind == "" {
		kind = KindOpenAI
	}
	if id == "" {
		id = kind
		if model := strings.TrimSpace(m.Model); model != "" {
			id = fmt.Sprintf("%s:%s", kind, model)
		}
	}
	switch kind {
	case KindOpenAI:
		client := &OpenAIChatClient{
			BaseURL:      m.APIURL,
			APIKey:       m.APIKey,
			Model:        m.Model,
			Timeout:      m.Timeout,
			MaxRetries:   m.MaxRetries,
			ExtraHeaders: m.Headers,
		}
		return NewOpenAIModelProvider(id, true, client), nil
	case KindLangchain:
		return NewLangchainModelProvider(id, m)
	default:
		return nil, fmt.Errorf("unsupported ai provider kind: %s", m.Kind)
	}
}
