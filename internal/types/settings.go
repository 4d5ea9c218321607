package types

import (
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderCerebras Provider = "cerebras"
	ProviderGemini   Provider = "gemini"
	ProviderGroq     Provider = "groq"
)

// Providers lists every supported provider in display order.
var Providers = []Provider{ProviderCerebras, ProviderGemini, ProviderGroq}

func ParseProvider(s string) (Provider, bool) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderCerebras, ProviderGemini, ProviderGroq:
		return p, true
	default:
		return "", false
	}
}

// Settings 对应扩展里同步存储的用户设置：当前 provider + 每个 provider 的 key/model。
type Settings struct {
	Provider       Provider `json:"provider" yaml:"provider" mapstructure:"provider"`
	CerebrasAPIKey string   `json:"cerebras_api_key" yaml:"cerebras_api_key" mapstructure:"cerebras_api_key"`
	CerebrasModel  string   `json:"cerebras_model" yaml:"cerebras_model" mapstructure:"cerebras_model"`
	GeminiAPIKey   string   `json:"gemini_api_key" yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	GeminiModel    string   `json:"gemini_model" yaml:"gemini_model" mapstructure:"gemini_model"`
	GroqAPIKey     string   `json:"groq_api_key" yaml:"groq_api_key" mapstructure:"groq_api_key"`
	GroqModel      string   `json:"groq_model" yaml:"groq_model" mapstructure:"groq_model"`
}

// Credentials returns the key and model configured for p.
func (s Settings) Credentials(p Provider) (apiKey, model string) {
	switch p {
	case ProviderCerebras:
		return strings.TrimSpace(s.CerebrasAPIKey), strings.TrimSpace(s.CerebrasModel)
	case ProviderGemini:
		return strings.TrimSpace(s.GeminiAPIKey), strings.TrimSpace(s.GeminiModel)
	case ProviderGroq:
		return strings.TrimSpace(s.GroqAPIKey), strings.TrimSpace(s.GroqModel)
	default:
		return "", ""
	}
}

// Active returns the active provider with its key and model.
func (s Settings) Active() (Provider, string, string) {
	key, model := s.Credentials(s.Provider)
	return s.Provider, key, model
}

// Validate checks the active provider has both an API key and a model.
func (s Settings) Validate() error {
	if _, ok := ParseProvider(string(s.Provider)); !ok {
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	key, model := s.Credentials(s.Provider)
	if key == "" {
		return fmt.Errorf("please enter an API key for %s", s.Provider)
	}
	if model == "" {
		return fmt.Errorf("please select a model for %s", s.Provider)
	}
	return nil
}

// Masked returns a copy safe to expose over HTTP (keys reduced to their last 4 chars).
func (s Settings) Masked() Settings {
	s.CerebrasAPIKey = MaskSecret(s.CerebrasAPIKey)
	s.GeminiAPIKey = MaskSecret(s.GeminiAPIKey)
	s.GroqAPIKey = MaskSecret(s.GroqAPIKey)
	return s
}

func MaskSecret(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}
