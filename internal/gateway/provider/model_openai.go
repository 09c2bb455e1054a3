package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"netscope/internal/logger"
	"netscope/internal/pkg/jsonutil"
)

const (
	defaultBaseURL     = "https://api.openai.com/v1"
	defaultTimeout     = 60 * time.Second
	defaultMaxRetries  = 2
	defaultBackoff     = 800 * time.Millisecond
	maxBackoff         = 8 * time.Second
	defaultTemperature = 0.5
)

// OpenAIChatClient：兼容 OpenAI 风格的聊天补全接口（/v1/chat/completions）。
type OpenAIChatClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// 429/5xx 的重试次数；0 使用默认值 2，负数表示不重试
	MaxRetries   int
	Backoff      time.Duration
	ExtraHeaders map[string]string

	HTTPClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

func (c *OpenAIChatClient) endpoint() string {
	url := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		url = defaultBaseURL
	}
	// 配置里可能已经写了完整路径
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (c *OpenAIChatClient) retries() int {
	switch {
	case c.MaxRetries < 0:
		return 0
	case c.MaxRetries == 0:
		return defaultMaxRetries
	default:
		return c.MaxRetries
	}
}

func (c *OpenAIChatClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (c *OpenAIChatClient) requestBody(payload ChatPayload) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if payload.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: payload.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: payload.User})
	body := chatRequest{
		Model:       c.Model,
		Messages:    messages,
		Temperature: defaultTemperature,
		MaxTokens:   payload.MaxTokens,
	}
	if payload.ExpectJSON {
		body.ResponseFormat = map[string]string{"type": "json_object"}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	return b, nil
}

// Complete sends one chat completion and returns the first choice's content.
func (c *OpenAIChatClient) Complete(ctx context.Context, payload ChatPayload) (string, error) {
	url := c.endpoint()
	b, err := c.requestBody(payload)
	if err != nil {
		return "", err
	}
	logger.Debugf("[AI] 请求: POST %s, headers=%v, body=%s", url, c.maskedHeaders(), string(b))

	httpc := c.httpClient()
	maxRetries := c.retries()
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
		if err != nil {
			return "", fmt.Errorf("build chat request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.APIKey)
		}
		for k, v := range c.ExtraHeaders {
			req.Header.Set(k, v)
		}

		resp, err := httpc.Do(req)
		if err != nil {
			return "", fmt.Errorf("chat request: %w", err)
		}
		if resp.StatusCode/100 == 2 {
			return decodeChoice(resp)
		}

		msg := decodeErrorMessage(resp)
		lastErr = fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
		if !retryable(resp.StatusCode) || attempt == maxRetries {
			break
		}
		wait := c.retryWait(resp.Header.Get("Retry-After"), attempt)
		logger.Warnf("[AI] %s 返回 %d，%v 后重试 (%d/%d)", c.Model, resp.StatusCode, wait, attempt+1, maxRetries)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func decodeChoice(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(r.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return r.Choices[0].Message.Content, nil
}

func decodeErrorMessage(resp *http.Response) string {
	defer resp.Body.Close()
	var eresp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&eresp)
	if msg := strings.TrimSpace(eresp.Error.Message); msg != "" {
		return msg
	}
	return resp.Status
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// retryWait 优先使用 Retry-After（秒），否则指数退避：0.8s, 1.6s, 3.2s ...，上限 8s。
func (c *OpenAIChatClient) retryWait(retryAfter string, attempt int) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	base := c.Backoff
	if base <= 0 {
		base = defaultBackoff
	}
	wait := base << attempt
	if wait > maxBackoff {
		wait = maxBackoff
	}
	return wait
}

// maskedHeaders 用于日志：密钥只保留后 4 位。
func (c *OpenAIChatClient) maskedHeaders() map[string]string {
	out := map[string]string{"Content-Type": "application/json"}
	if c.APIKey != "" {
		out["Authorization"] = "Bearer " + mask(c.APIKey)
	}
	for k, v := range c.ExtraHeaders {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "key") || strings.Contains(lk, "token") || strings.Contains(lk, "auth") {
			v = mask(v)
		}
		out[k] = v
	}
	return out
}

func mask(secret string) string {
	if len(secret) > 4 {
		return "****" + secret[len(secret)-4:]
	}
	return "****"
}

// OpenAIModelProvider 把 OpenAIChatClient 适配为 ModelProvider。
type OpenAIModelProvider struct {
	id      string
	enabled bool
	client  *OpenAIChatClient
}

func NewOpenAIModelProvider(id string, enabled bool, client *OpenAIChatClient) *OpenAIModelProvider {
	return &OpenAIModelProvider{id: id, enabled: enabled, client: client}
}

func (p *OpenAIModelProvider) ID() string    { return p.id }
func (p *OpenAIModelProvider) Enabled() bool { return p.enabled }

func (p *OpenAIModelProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	if !p.enabled {
		return "", ErrDisabled
	}
	var dump string
	if body, err := p.client.requestBody(payload); err == nil {
		dump = jsonutil.Pretty(body)
	}
	logger.LogLLMRequest(p.id, payload.Purpose, payload.System, payload.User, dump)
	out, err := p.client.Complete(ctx, payload)
	if err != nil {
		return "", err
	}
	logger.LogLLMResponse(p.id, payload.Purpose, out)
	return out, nil
}
