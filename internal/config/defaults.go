package config

import (
	"os"
	"path/filepath"
	"strings"
)

// 默认值常量
const (
	defaultAppEnv           = "dev"
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":5000"
	defaultAppLogPath       = "data/logs/netscope.log"
	defaultAIOrigin         = "auto"
	defaultAIProvider       = "openai"
	defaultAIAPIURL         = "https://api.openai.com/v1"
	defaultAIModel          = "gpt-4o"
	defaultAITimeout        = 60
	defaultAIMaxRetries     = 2
	defaultBreakerThreshold = 3
	defaultBreakerCooldown  = 60
	defaultAdviceWorkers    = 4
	defaultScanFile         = "~/.network_detect/wifi_results.json"
	defaultHistoryDB        = "data/db/history.db"
	defaultHistoryMax       = 100
	defaultTrendWindow      = 5
	defaultAILogDB          = "data/db/ai_calls.db"

	envAPIKey = "OPENAI_API_KEY"
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.AI.applyDefaults(keys)
	c.Network.applyDefaults(keys)
	c.History.applyDefaults(keys)
	c.AILog.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
	)
}

func (a *AIConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("ai.default_origin", &a.DefaultOrigin, defaultAIOrigin),
		stringFieldDefault("ai.provider", &a.Provider, defaultAIProvider),
		stringFieldDefault("ai.api_url", &a.APIURL, defaultAIAPIURL),
		stringFieldDefault("ai.model", &a.Model, defaultAIModel),
		intFieldDefault("ai.timeout_seconds", &a.TimeoutSeconds, defaultAITimeout),
		intFieldDefault("ai.max_retries", &a.MaxRetries, defaultAIMaxRetries),
		intFieldDefault("ai.breaker_threshold", &a.BreakerThreshold, defaultBreakerThreshold),
		intFieldDefault("ai.breaker_cooldown_seconds", &a.BreakerCooldownSeconds, defaultBreakerCooldown),
		intFieldDefault("ai.advice_concurrency", &a.AdviceConcurrency, defaultAdviceWorkers),
	)
}

func (n *NetworkConfig) applyDefaults(keys keySet) {
	if n == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("network.scan_file", &n.ScanFile, defaultScanFile),
	)
}

func (h *HistoryConfig) applyDefaults(keys keySet) {
	if h == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("history.db_path", &h.DBPath, defaultHistoryDB),
		fieldDefault{
			key:   "history.max_entries",
			need:  func() bool { return h.MaxEntries <= 0 },
			apply: func() { h.MaxEntries = defaultHistoryMax },
		},
		intFieldDefault("history.trend_window", &h.TrendWindow, defaultTrendWindow),
	)
}

func (l *AILogConfig) applyDefaults(keys keySet) {
	if l == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("ailog.db_path", &l.DBPath, defaultAILogDB),
	)
}

// applyEnv 用环境变量补齐未配置的密钥。
func (c *Config) applyEnv() {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		c.AI.APIKey = strings.TrimSpace(os.Getenv(envAPIKey))
	}
}

func (c *Config) normalize() {
	c.App.LogLevel = strings.ToLower(strings.TrimSpace(c.App.LogLevel))
	c.AI.DefaultOrigin = strings.ToLower(strings.TrimSpace(c.AI.DefaultOrigin))
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.Network.ScanFile = expandHome(c.Network.ScanFile)
	c.AI.CatalogPath = expandHome(c.AI.CatalogPath)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func intFieldDefault(key string, target *int, def int) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil && *target == 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
