package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func chatServer(t *testing.T, handler func(w http.ResponseWriter, body chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		var body chatRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeChoice(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	})
}

func TestOpenAIChatClientComplete(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, body chatRequest) {
		assert.Equal(t, "gpt-test", body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "hello", body.Messages[1].Content)
		}
		assert.Equal(t, "json_object", body.ResponseFormat["type"])
		writeChoice(w, `{"rating":4}`)
	})
	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1/chat/completions/", APIKey: "sk-test", Model: "gpt-test"}
	out, err := c.Complete(context.Background(), ChatPayload{System: "sys", User: "hello", ExpectJSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"rating":4}`, out)
}

func TestOpenAIChatClientRetries(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, body chatRequest) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"busy"}}`))
			return
		}
		assert.Nil(t, body.ResponseFormat)
		writeChoice(w, "ok")
	})
	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Backoff: time.Millisecond}
	out, err := c.Complete(context.Background(), ChatPayload{User: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestOpenAIChatClientGivesUp(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	})
	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1", APIKey: "sk-test", MaxRetries: 1, Backoff: time.Millisecond}
	_, err := c.Complete(context.Background(), ChatPayload{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=429: slow down")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestOpenAIChatClientNoRetryOnClientError(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1", APIKey: "sk-test", Backoff: time.Millisecond}
	_, err := c.Complete(context.Background(), ChatPayload{User: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=401")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestOpenAIChatClientEmptyChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	c := &OpenAIChatClient{BaseURL: srv.URL + "/v1", APIKey: "sk-test"}
	_, err := c.Complete(context.Background(), ChatPayload{User: "hi"})
	assert.ErrorIs(t, err, ErrEmptyChoices)
}

func TestMaskedHeaders(t *testing.T) {
	c := &OpenAIChatClient{APIKey: "sk-123456789", ExtraHeaders: map[string]string{"X-Api-Key": "abcdefgh", "X-Trace": "t1"}}
	h := c.maskedHeaders()
	assert.Equal(t, "Bearer ****6789", h["Authorization"])
	assert.Equal(t, "****efgh", h["X-Api-Key"])
	assert.Equal(t, "t1", h["X-Trace"])
}

func TestBuildProviderFromConfig(t *testing.T) {
	p, err := BuildProviderFromConfig(ModelCfg{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = BuildProviderFromConfig(ModelCfg{APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "openai:gpt-4o", p.ID())
	assert.True(t, p.Enabled())

	p, err = BuildProviderFromConfig(ModelCfg{APIKey: "k", Kind: "langchain", ID: "lc"})
	require.NoError(t, err)
	assert.Equal(t, "lc", p.ID())

	_, err = BuildProviderFromConfig(ModelCfg{APIKey: "k", Kind: "carrier-pigeon"})
	assert.ErrorContains(t, err, "unsupported ai provider kind")
}

type fakeLLM struct {
	lastMessages []llms.MessageContent
	lastOpts     llms.CallOptions
	resp         *llms.ContentResponse
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.lastMessages = messages
	for _, opt := range options {
		opt(&f.lastOpts)
	}
	return f.resp, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangchainModelProvider(t *testing.T) {
	fake := &fakeLLM{resp: &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: "summary"}}}}
	p := NewLangchainModelProviderWith("lc", fake)
	out, err := p.Call(context.Background(), ChatPayload{System: "sys", User: "text", ExpectJSON: true, MaxTokens: 64})
	require.NoError(t, err)
	assert.Equal(t, "summary", out)
	require.Len(t, fake.lastMessages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, fake.lastMessages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, fake.lastMessages[1].Role)
	assert.True(t, fake.lastOpts.JSONMode)
	assert.Equal(t, 64, fake.lastOpts.MaxTokens)

	fake.resp = &llms.ContentResponse{}
	_, err = p.Call(context.Background(), ChatPayload{User: "x"})
	assert.ErrorIs(t, err, ErrEmptyChoices)
}

func TestDisabledProvider(t *testing.T) {
	p := NewOpenAIModelProvider("off", false, &OpenAIChatClient{})
	_, err := p.Call(context.Background(), ChatPayload{User: "x"})
	assert.ErrorIs(t, err, ErrDisabled)
}
