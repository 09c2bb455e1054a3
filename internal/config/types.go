package config

import "strings"

// Config 是 netscope 的主配置载体。
type Config struct {
	App     AppConfig     `toml:"app"`
	AI      AIConfig      `toml:"ai"`
	Network NetworkConfig `toml:"network"`
	History HistoryConfig `toml:"history"`
	AILog   AILogConfig   `toml:"ailog"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
	LLMLog   string `toml:"llm_log_path"`
	LLMDump  bool   `toml:"llm_dump_payload"`
}

// AIConfig 控制模型访问与本地兜底。api_key 为空时所有请求走本地实现。
type AIConfig struct {
	DefaultOrigin          string            `toml:"default_origin"`
	Provider               string            `toml:"provider"`
	APIURL                 string            `toml:"api_url"`
	APIKey                 string            `toml:"api_key"`
	Model                  string            `toml:"model"`
	Headers                map[string]string `toml:"headers"`
	TimeoutSeconds         int               `toml:"timeout_seconds"`
	MaxRetries             int               `toml:"max_retries"`
	CatalogPath            string            `toml:"catalog_path"`
	BreakerThreshold       int               `toml:"breaker_threshold"`
	BreakerCooldownSeconds int               `toml:"breaker_cooldown_seconds"`
	AdviceConcurrency      int               `toml:"advice_concurrency"`
}

type NetworkConfig struct {
	ScanFile string `toml:"scan_file"`
}

type HistoryConfig struct {
	DBPath      string `toml:"db_path"`
	MaxEntries  int    `toml:"max_entries"`
	TrendWindow int    `toml:"trend_window"`
}

type AILogConfig struct {
	DBPath string `toml:"db_path"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	if len(k) == 0 {
		return false
	}
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return false
	}
	_, ok := k[path]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
