package advisor

import (
	"errors"
	"fmt"
	"strings"
)

// Origin 指定 AI 请求的处理方式。
type Origin string

const (
	OriginOpenAI Origin = "openai"
	OriginLocal  Origin = "local"
	OriginAuto   Origin = "auto"
)

var (
	ErrInvalidOrigin = errors.New("invalid origin")
	ErrNoProvider    = errors.New("no model provider configured")
	ErrBreakerOpen   = errors.New("model circuit breaker open")
)

// OriginInfo 是对外展示的 origin 描述。
type OriginInfo struct {
	Origin      Origin `json:"origin"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var origins = []OriginInfo{
	{Origin: OriginOpenAI, Name: "OpenAI", Description: "Uses the OpenAI chat completion API"},
	{Origin: OriginLocal, Name: "Local", Description: "Uses the local implementation without any external API call"},
	{Origin: OriginAuto, Name: "Auto", Description: "Picks the best available option automatically"},
}

// Origins lists every supported origin in a stable order.
func Origins() []OriginInfo {
	return append([]OriginInfo(nil), origins...)
}

// Info returns the description of o.
func (o Origin) Info() OriginInfo {
	for _, info := range origins {
		if info.Origin == o {
			return info
		}
	}
	return OriginInfo{Origin: o, Name: string(o)}
}

// ParseOrigin 校验并规范化 origin；大小写不敏感。
func ParseOrigin(raw string) (Origin, error) {
	o := Origin(strings.ToLower(strings.TrimSpace(raw)))
	switch o {
	case OriginOpenAI, OriginLocal, OriginAuto:
		return o, nil
	default:
		names := make([]string, 0, len(origins))
		for _, info := range origins {
			names = append(names, string(info.Origin))
		}
		return "", fmt.Errorf("%w: %q, must be one of: %s", ErrInvalidOrigin, raw, strings.Join(names, ", "))
	}
}
