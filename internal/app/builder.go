package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"netscope/internal/advisor"
	"netscope/internal/catalog"
	"netscope/internal/config"
	"netscope/internal/gateway/provider"
	"netscope/internal/logger"
	"netscope/internal/pkg/circuit"
	"netscope/internal/store/ailog"
	"netscope/internal/store/history"
	apihttp "netscope/internal/transport/http/api"
)

const breakerName = "model"

type AppBuilder struct {
	cfg *config.Config

	catalogFn  func(string) (*catalog.Registry, error)
	providerFn func(config.AIConfig) (provider.ModelProvider, error)
	historyFn  func(config.HistoryConfig) (*history.Store, error)
	callLogFn  func(config.AILogConfig) (*ailog.Store, error)
	httpFn     func(apihttp.ServerConfig) (*apihttp.Server, error)
}

type AppBuilderOption func(*AppBuilder)

// WithProvider 替换模型 provider 的构建逻辑（测试中注入 mock）。
func WithProvider(p provider.ModelProvider) AppBuilderOption {
	return func(b *AppBuilder) {
		b.providerFn = func(config.AIConfig) (provider.ModelProvider, error) { return p, nil }
	}
}

func NewAppBuilder(cfg *config.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		catalogFn:  catalog.NewRegistry,
		providerFn: buildModelProvider,
		historyFn:  buildHistoryStore,
		callLogFn:  buildCallLog,
		httpFn:     apihttp.NewServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	app := &App{cfg: cfg}
	fail := func(err error) (*App, error) {
		_ = app.Close()
		return nil, err
	}

	cat, err := b.catalogFn(cfg.AI.CatalogPath)
	if err != nil {
		return fail(fmt.Errorf("加载 catalog 失败: %w", err))
	}
	cat.OnChange(func(s catalog.Snapshot) {
		logger.Infof("✓ catalog 已热加载 version=%d source=%s", s.Version, s.Source)
	})
	app.catalog = cat

	modelProvider, err := b.providerFn(cfg.AI)
	if err != nil {
		return fail(fmt.Errorf("初始化模型 provider 失败: %w", err))
	}

	if app.history, err = b.historyFn(cfg.History); err != nil {
		return fail(fmt.Errorf("初始化统计历史失败: %w", err))
	}
	if app.callLog, err = b.callLogFn(cfg.AILog); err != nil {
		return fail(fmt.Errorf("初始化 AI 调用日志失败: %w", err))
	}

	breaker := circuit.NewCircuitBreaker(breakerName, cfg.AI.BreakerThreshold,
		time.Duration(cfg.AI.BreakerCooldownSeconds)*time.Second)
	breaker.SetStateChangeHandler(func(name string, from, to circuit.State) {
		logger.Warnf("[breaker] %s: %s -> %s", name, from, to)
	})

	opts := advisor.Options{
		DefaultOrigin: advisor.Origin(cfg.AI.DefaultOrigin),
		Catalog:       cat,
		Breaker:       breaker,
		Timeout:       time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		Concurrency:   cfg.AI.AdviceConcurrency,
	}
	if modelProvider != nil {
		opts.Provider = modelProvider
	}
	if app.callLog != nil {
		opts.CallLog = app.callLog
	}
	if app.advisor, err = advisor.New(opts); err != nil {
		return fail(err)
	}

	app.http, err = b.httpFn(apihttp.ServerConfig{
		Addr:        cfg.App.HTTPAddr,
		Advisor:     app.advisor,
		History:     app.history,
		CallLog:     app.callLog,
		ScanFile:    cfg.Network.ScanFile,
		TrendWindow: cfg.History.TrendWindow,
	})
	if err != nil {
		return fail(fmt.Errorf("初始化 HTTP 服务失败: %w", err))
	}

	app.Summary = newStartupSummary(cfg, cat.Snapshot(), modelProvider)
	return app, nil
}

// buildModelProvider 在未配置 api_key 时返回 nil，AI 接口只走本地实现。
func buildModelProvider(cfg config.AIConfig) (provider.ModelProvider, error) {
	retries := cfg.MaxRetries
	if retries == 0 {
		// 客户端把 0 视为默认值，显式配置 0 时转成 -1 表示不重试
		retries = -1
	}
	p, err := provider.BuildProviderFromConfig(provider.ModelCfg{
		Kind:       cfg.Provider,
		APIURL:     cfg.APIURL,
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		Headers:    cfg.Headers,
		Timeout:    time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRetries: retries,
	})
	if err != nil || p == nil {
		return nil, err
	}
	logger.Infof("✓ 模型 provider 已启用: %s", p.ID())
	return p, nil
}

func buildHistoryStore(cfg config.HistoryConfig) (*history.Store, error) {
	store, err := history.NewStore(cfg.DBPath, cfg.MaxEntries)
	if err != nil {
		return nil, err
	}
	logger.Infof("✓ 统计历史写入 %s (最多 %d 条)", absPath(cfg.DBPath), cfg.MaxEntries)
	return store, nil
}

func buildCallLog(cfg config.AILogConfig) (*ailog.Store, error) {
	store, err := ailog.NewStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Infof("✓ AI 调用日志写入 %s", absPath(cfg.DBPath))
	return store, nil
}

func absPath(path string) string {
	path = strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
