package config

import (
	"fmt"
	"strings"
)

var (
	validOrigins   = []string{"openai", "local", "auto"}
	validProviders = []string{"openai", "langchain"}
	validLevels    = []string{"debug", "info", "warn", "error"}
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.AI.validate(); err != nil {
		return err
	}
	if err := c.History.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.AILog.DBPath) == "" {
		return fmt.Errorf("ailog.db_path cannot be empty")
	}
	return nil
}

func (a *AppConfig) validate() error {
	if strings.TrimSpace(a.HTTPAddr) == "" {
		return fmt.Errorf("app.http_addr cannot be empty")
	}
	if !contains(validLevels, a.LogLevel) {
		return fmt.Errorf("app.log_level must be one of %s, got %q", strings.Join(validLevels, "/"), a.LogLevel)
	}
	return nil
}

func (a *AIConfig) validate() error {
	if !contains(validOrigins, a.DefaultOrigin) {
		return fmt.Errorf("ai.default_origin must be one of %s, got %q", strings.Join(validOrigins, "/"), a.DefaultOrigin)
	}
	if !contains(validProviders, a.Provider) {
		return fmt.Errorf("ai.provider must be one of %s, got %q", strings.Join(validProviders, "/"), a.Provider)
	}
	if a.TimeoutSeconds < 0 {
		return fmt.Errorf("ai.timeout_seconds must be >= 0")
	}
	if a.MaxRetries < 0 {
		return fmt.Errorf("ai.max_retries must be >= 0")
	}
	if a.BreakerThreshold < 1 {
		return fmt.Errorf("ai.breaker_threshold must be >= 1")
	}
	if a.BreakerCooldownSeconds < 0 {
		return fmt.Errorf("ai.breaker_cooldown_seconds must be >= 0")
	}
	if a.AdviceConcurrency < 1 {
		return fmt.Errorf("ai.advice_concurrency must be >= 1")
	}
	return nil
}

func (h *HistoryConfig) validate() error {
	if strings.TrimSpace(h.DBPath) == "" {
		return fmt.Errorf("history.db_path cannot be empty")
	}
	if h.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be > 0")
	}
	if h.TrendWindow < 2 {
		return fmt.Errorf("history.trend_window must be >= 2")
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
