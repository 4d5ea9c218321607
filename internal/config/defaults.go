package config

import (
	"strings"

	"vectora/internal/types"
)

// 默认值常量
const (
	defaultAppEnv         = "dev"
	defaultAppLogLevel    = "info"
	defaultAppLogFormat   = "text"
	defaultAppHTTPAddr    = ":8787"
	defaultAppLLMLogPath  = "data/logs/vectora-llm.log"
	defaultSettingsPath   = "configs/settings.yaml"
	defaultHistoryPath    = "data/history.db"
	defaultCallLogPath    = "data/calls.db"
	defaultViewportWidth  = 1366
	defaultViewportHeight = 768
	defaultCaptureTimeout = 30
	defaultMaxImageBytes  = 10 << 20
)

// applyDefaults 为所有子配置应用默认值。
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Settings.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Capture.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_format", &a.LogFormat, defaultAppLogFormat),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		stringFieldDefault("app.llm_log_path", &a.LLMLog, defaultAppLLMLogPath),
	)
}

func (s *SettingsConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("settings.path", &s.Path, defaultSettingsPath),
		boolFieldDefault("settings.watch", &s.Watch, true),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.history_path", &s.HistoryPath, defaultHistoryPath),
		stringFieldDefault("store.call_log_path", &s.CallLogPath, defaultCallLogPath),
		boolFieldDefault("store.call_log_enabled", &s.CallLogEnabled, true),
		intFieldDefault("store.history_limit", &s.HistoryLimit, types.DefaultHistoryLimit),
	)
}

func (c *CaptureConfig) applyDefaults(keys keySet) {
	if c == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("capture.browser_enabled", &c.BrowserEnabled, true),
		intFieldDefault("capture.viewport_width", &c.ViewportWidth, defaultViewportWidth),
		intFieldDefault("capture.viewport_height", &c.ViewportHeight, defaultViewportHeight),
		intFieldDefault("capture.timeout_seconds", &c.TimeoutSeconds, defaultCaptureTimeout),
		fieldDefault{
			key:   "capture.max_image_bytes",
			need:  func() bool { return c.MaxImageBytes <= 0 },
			apply: func() { c.MaxImageBytes = defaultMaxImageBytes },
		},
	)
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
		need: func() bool { return target != nil && *target <= 0 },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

// boolFieldDefault 只在键缺失时生效：显式写 false 会被 keySet 拦住。
func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key:  key,
		need: func() bool { return target != nil },
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
