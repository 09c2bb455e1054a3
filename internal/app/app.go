package app

import (
	"context"
	"errors"
	"fmt"

	"netscope/internal/advisor"
	"netscope/internal/catalog"
	"netscope/internal/config"
	"netscope/internal/logger"
	"netscope/internal/store/ailog"
	"netscope/internal/store/history"
	apihttp "netscope/internal/transport/http/api"

	"golang.org/x/sync/errgroup"
)

// App 负责应用级编排：加载配置→初始化依赖→启动 HTTP 服务。
type App struct {
	cfg     *config.Config
	catalog *catalog.Registry
	advisor *advisor.Advisor
	history *history.Store
	callLog *ailog.Store
	http    *apihttp.Server
	Summary *StartupSummary
}

// NewApp 根据配置构建应用对象（不启动）
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run 启动 HTTP 服务，直到 ctx 取消。退出时关闭所有存储。
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	defer a.Close()

	if a.Summary != nil {
		a.Summary.Print()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// Advisor exposes the AI advisor (used by the analyze command and tests).
func (a *App) Advisor() *advisor.Advisor {
	if a == nil {
		return nil
	}
	return a.advisor
}

// History exposes the statistics history store.
func (a *App) History() *history.Store {
	if a == nil {
		return nil
	}
	return a.history
}

// Close 关闭数据库连接，可重复调用。
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.history != nil {
		errs = append(errs, a.history.Close())
	}
	if a.callLog != nil {
		errs = append(errs, a.callLog.Close())
	}
	return errors.Join(errs...)
}
