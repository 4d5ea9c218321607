package config

import "strings"

// Config 汇总服务进程的全部配置（不含用户设置，用户设置见 settings.path）。
type Config struct {
	App       AppConfig       `toml:"app"`
	Settings  SettingsConfig  `toml:"settings"`
	Providers ProvidersConfig `toml:"providers"`
	Store     StoreConfig     `toml:"store"`
	Notify    NotifyConfig    `toml:"notify"`
	Capture   CaptureConfig   `toml:"capture"`
}

type AppConfig struct {
	Env       string `toml:"env"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	HTTPAddr  string `toml:"http_addr"`
	LogPath   string `toml:"log_path"`
	LLMLog    string `toml:"llm_log_path"`
	LLMDump   bool   `toml:"llm_dump_payload"`
}

// SettingsConfig points at the user settings file (provider, keys, models).
type SettingsConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"`
}

// ProvidersConfig overrides the provider API roots. TimeoutSeconds 0 means
// the HTTP client imposes no timeout of its own.
type ProvidersConfig struct {
	CerebrasBaseURL string `toml:"cerebras_base_url"`
	GroqBaseURL     string `toml:"groq_base_url"`
	GeminiBaseURL   string `toml:"gemini_base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

type StoreConfig struct {
	HistoryPath    string `toml:"history_path"`
	HistoryLimit   int    `toml:"history_limit"`
	CallLogEnabled bool   `toml:"call_log_enabled"`
	CallLogPath    string `toml:"call_log_path"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// CaptureConfig 控制图片下载与无头浏览器截图。
type CaptureConfig struct {
	BrowserEnabled bool  `toml:"browser_enabled"`
	ViewportWidth  int   `toml:"viewport_width"`
	ViewportHeight int   `toml:"viewport_height"`
	TimeoutSeconds int   `toml:"timeout_seconds"`
	MaxImageBytes  int64 `toml:"max_image_bytes"`
}

// keySet 记录配置文件里显式出现过的键，显式写出的值（哪怕是零值）不会被默认值覆盖。
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
