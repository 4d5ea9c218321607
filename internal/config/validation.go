package config

import (
	"fmt"
	"net/url"
	"strings"

	"vectora/internal/logger"
	"vectora/internal/types"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Providers.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	if err := c.Capture.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Settings.Path) == "" {
		return fmt.Errorf("settings.path cannot be empty")
	}
	return nil
}

func (a *AppConfig) validate() error {
	if _, err := logger.ParseLevel(a.LogLevel); err != nil {
		return fmt.Errorf("app.log_level: %w", err)
	}
	if _, err := logger.ParseFormat(a.LogFormat); err != nil {
		return fmt.Errorf("app.log_format: %w", err)
	}
	return nil
}

func (p *ProvidersConfig) validate() error {
	for key, raw := range map[string]string{
		"providers.cerebras_base_url": p.CerebrasBaseURL,
		"providers.groq_base_url":     p.GroqBaseURL,
		"providers.gemini_base_url":   p.GeminiBaseURL,
	} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) url, got %q", key, raw)
		}
	}
	if p.TimeoutSeconds < 0 {
		return fmt.Errorf("providers.timeout_seconds must be >= 0")
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if strings.TrimSpace(s.HistoryPath) == "" {
		return fmt.Errorf("store.history_path cannot be empty")
	}
	if s.HistoryLimit <= 0 || s.HistoryLimit > types.DefaultHistoryLimit {
		return fmt.Errorf("store.history_limit must be in (0, %d]", types.DefaultHistoryLimit)
	}
	if s.CallLogEnabled && strings.TrimSpace(s.CallLogPath) == "" {
		return fmt.Errorf("store.call_log_path cannot be empty when call log is enabled")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Telegram.Enabled {
		if n.Telegram.BotToken == "" || n.Telegram.ChatID == "" {
			return fmt.Errorf("telegram notification enabled but missing bot_token or chat_id")
		}
	}
	return nil
}

func (c *CaptureConfig) validate() error {
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		return fmt.Errorf("capture viewport must be positive")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("capture.timeout_seconds must be > 0")
	}
	return nil
}
