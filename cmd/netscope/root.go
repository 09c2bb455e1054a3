package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"netscope/internal/app"
	"netscope/internal/config"
	"netscope/internal/logger"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "0.1.0"

type rootOptions struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	closers []func() error
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "netscope",
		Short:         "Network quality analysis service with an AI proxy",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.teardown()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (defaults to $"+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.log_level")

	cmd.AddCommand(newServeCmd(opts), newAnalyzeCmd(opts))
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

// setup 加载配置并初始化日志输出。
func (o *rootOptions) setup() error {
	cfg, err := config.Load(config.ResolvePath(o.configPath))
	if err != nil {
		return fmt.Errorf("读取配置失败: %w", err)
	}
	if lvl := strings.TrimSpace(o.logLevel); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	o.cfg = cfg

	logFile, err := logger.SetFileOutput(os.Stdout, cfg.App.LogPath)
	if err != nil {
		return fmt.Errorf("初始化日志文件失败: %w", err)
	}
	if logFile != nil {
		o.closers = append(o.closers, logFile.Close)
	}
	logger.SetLLMWriter(nil)
	if cfg.App.LLMDump {
		f, err := openLLMLog(cfg.App.LLMLog)
		if err != nil {
			return fmt.Errorf("初始化 LLM 日志失败: %w", err)
		}
		if f != nil {
			logger.SetLLMWriter(f)
			o.closers = append(o.closers, f.Close)
		}
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.EnableLLMPayloadDump(cfg.App.LLMDump)
	logger.Infof("✓ 配置加载成功（环境=%s，origin=%s）", cfg.App.Env, cfg.AI.DefaultOrigin)
	return nil
}

func (o *rootOptions) teardown() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		_ = o.closers[i]()
	}
	o.closers = nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(opts.cfg)
	if err != nil {
		return fmt.Errorf("初始化应用失败: %w", err)
	}
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("运行失败: %w", err)
	}
	logger.Infof("netscope stopped")
	return nil
}

func openLLMLog(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(trimmed), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
