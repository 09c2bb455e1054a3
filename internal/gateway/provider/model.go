package provider

import (
	"context"
	"errors"
)

var (
	ErrEmptyChoices = errors.New("model returned no choices")
	ErrDisabled     = errors.New("model provider disabled")
)

// ChatPayload 是一次聊天补全请求。Purpose 只用于日志，标识调用场景（sentiment/summary 等）。
type ChatPayload struct {
	Purpose    string
	System     string
	User       string
	ExpectJSON bool
	MaxTokens  int
}

type ModelProvider interface {
	ID() string
	Enabled() bool

	Call(ctx context.Context, payload ChatPayload) (string, error)
}
