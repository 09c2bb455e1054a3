package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"netscope/internal/catalog"
	"netscope/internal/gateway/provider"
	"netscope/internal/logger"
	"netscope/internal/pkg/circuit"
	"netscope/internal/pkg/text"
	"netscope/internal/store/ailog"

	"github.com/google/uuid"
)

const (
	auditInputLimit    = 200
	defaultConcurrency = 4
)

// CallLogger 持久化 AI 调用审计记录，由 ailog.Store 实现。
type CallLogger interface {
	Insert(ctx context.Context, rec ailog.Record) (int64, error)
}

type Options struct {
	DefaultOrigin Origin
	Provider      provider.ModelProvider
	Catalog       *catalog.Registry
	Breaker       *circuit.CircuitBreaker
	CallLog       CallLogger
	// 单次模型调用的超时；0 表示只受请求 ctx 约束
	Timeout     time.Duration
	Concurrency int
}

// Advisor 根据 origin 选择模型或本地实现处理 AI 请求。
type Advisor struct {
	defaultOrigin Origin
	provider      provider.ModelProvider
	catalog       *catalog.Registry
	breaker       *circuit.CircuitBreaker
	callLog       CallLogger
	timeout       time.Duration
	concurrency   int
	now           func() time.Time
}

// Meta 描述一次请求实际如何被处理。
type Meta struct {
	TraceID   string `json:"trace_id"`
	Requested Origin `json:"requested_origin"`
	Origin    Origin `json:"origin"`
	Fallback  bool   `json:"fallback"`
	Warning   string `json:"warning,omitempty"`
}

func New(opts Options) (*Advisor, error) {
	origin := opts.DefaultOrigin
	if origin == "" {
		origin = OriginAuto
	}
	if _, err := ParseOrigin(string(origin)); err != nil {
		return nil, err
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	p := opts.Provider
	if p != nil && !p.Enabled() {
		p = nil
	}
	return &Advisor{
		defaultOrigin: origin,
		provider:      p,
		catalog:       cat,
		breaker:       opts.Breaker,
		callLog:       opts.CallLog,
		timeout:       opts.Timeout,
		concurrency:   concurrency,
		now:           time.Now,
	}, nil
}

// DefaultOrigin returns the configured origin used when a request names none.
func (a *Advisor) DefaultOrigin() Origin { return a.defaultOrigin }

// HasProvider reports whether a model provider is configured.
func (a *Advisor) HasProvider() bool { return a.provider != nil }

// ModelStatus 描述模型通道当前是否可用。
type ModelStatus struct {
	Configured bool            `json:"configured"`
	Provider   string          `json:"provider,omitempty"`
	Breaker    *circuit.Status `json:"breaker,omitempty"`
}

func (a *Advisor) ModelStatus() ModelStatus {
	st := ModelStatus{Configured: a.provider != nil}
	if a.provider != nil {
		st.Provider = a.provider.ID()
	}
	if a.breaker != nil {
		bs := a.breaker.Status()
		st.Breaker = &bs
	}
	return st
}

func (a *Advisor) resolve(requested string) (Origin, error) {
	if requested == "" {
		return a.defaultOrigin, nil
	}
	return ParseOrigin(requested)
}

// modelReady 返回 nil 表示可以调用模型。
func (a *Advisor) modelReady() error {
	if a.provider == nil {
		return ErrNoProvider
	}
	if a.breaker != nil && !a.breaker.Allow() {
		return ErrBreakerOpen
	}
	return nil
}

type call[T any] struct {
	kind      string
	requested string
	input     string
	remote    func(ctx context.Context) (T, error)
	local     func() T
}

// execute 是所有 AI 操作共用的流程：解析 origin，按需调用模型，失败时退回本地实现并写审计记录。
func execute[T any](ctx context.Context, a *Advisor, c call[T]) (T, Meta, error) {
	var zero T
	origin, err := a.resolve(c.requested)
	if err != nil {
		return zero, Meta{}, err
	}
	meta := Meta{TraceID: uuid.NewString(), Requested: origin, Origin: OriginLocal}
	start := a.now()

	var (
		result   T
		modelErr error
		ran      bool
	)
	switch origin {
	case OriginOpenAI:
		if modelErr = a.modelReady(); modelErr == nil {
			result, modelErr = callModel(ctx, a, c.remote)
			ran = modelErr == nil
		}
	case OriginAuto:
		if a.modelReady() == nil {
			result, modelErr = callModel(ctx, a, c.remote)
			ran = modelErr == nil
		}
	}

	if ran {
		meta.Origin = OriginOpenAI
	} else {
		result = c.local()
		if modelErr != nil {
			meta.Fallback = true
			meta.Warning = fallbackWarning(c.kind)
			logger.Warnf("[advisor] %s 模型调用失败，使用本地实现: %v", c.kind, modelErr)
		}
	}

	a.audit(ctx, c.kind, c.input, meta, result, modelErr, a.now().Sub(start))
	return result, meta, nil
}

func callModel[T any](ctx context.Context, a *Advisor, remote func(context.Context) (T, error)) (T, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}
	out, err := remote(ctx)
	if a.breaker != nil {
		a.breaker.Record(err)
	}
	return out, err
}

func (a *Advisor) audit(ctx context.Context, kind, input string, meta Meta, result any, modelErr error, took time.Duration) {
	if a.callLog == nil {
		return
	}
	output, err := json.Marshal(result)
	if err != nil {
		output = []byte(fmt.Sprint(result))
	}
	rec := ailog.Record{
		Timestamp: a.now(),
		TraceID:   meta.TraceID,
		Kind:      kind,
		Requested: string(meta.Requested),
		Origin:    string(meta.Origin),
		Input:     text.Truncate(input, auditInputLimit),
		Output:    string(output),
		Fallback:  meta.Fallback,
		Duration:  took.Milliseconds(),
	}
	if a.provider != nil {
		rec.Provider = a.provider.ID()
	}
	if modelErr != nil {
		rec.Error = modelErr.Error()
	}
	// 请求 ctx 可能已取消，写入单独限时
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if _, err := a.callLog.Insert(writeCtx, rec); err != nil {
		logger.Errorf("[advisor] 写入 AI 调用日志失败: %v", err)
	}
}

func fallbackWarning(kind string) string {
	return fmt.Sprintf("Fallback mode: the local implementation was used for %s.", kind)
}
