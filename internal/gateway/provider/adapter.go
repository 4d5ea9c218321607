package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"vectora/internal/types"
)

const (
	DefaultCerebrasBaseURL = "https://api.cerebras.ai"
	DefaultGroqBaseURL     = "https://api.groq.com"
	DefaultGeminiBaseURL   = "https://generativelanguage.googleapis.com"
)

// Endpoints holds the API roots; tests point them at httptest servers.
type Endpoints struct {
	CerebrasBaseURL string
	GroqBaseURL     string
	GeminiBaseURL   string
}

func (e Endpoints) withDefaults() Endpoints {
	if strings.TrimSpace(e.CerebrasBaseURL) == "" {
		e.CerebrasBaseURL = DefaultCerebrasBaseURL
	}
	if strings.TrimSpace(e.GroqBaseURL) == "" {
		e.GroqBaseURL = DefaultGroqBaseURL
	}
	if strings.TrimSpace(e.GeminiBaseURL) == "" {
		e.GeminiBaseURL = DefaultGeminiBaseURL
	}
	e.CerebrasBaseURL = strings.TrimRight(e.CerebrasBaseURL, "/")
	e.GroqBaseURL = strings.TrimRight(e.GroqBaseURL, "/")
	e.GeminiBaseURL = strings.TrimRight(e.GeminiBaseURL, "/")
	return e
}

// Adapter 根据 provider 选择固定的 REST 调用形态，每次 Complete 至多一次 POST。
type Adapter struct {
	endpoints Endpoints
	httpc     *http.Client
	cerebras  *chatClient
	groq      *chatClient
	gemini    *geminiClient
}

// NewAdapter builds an Adapter. A nil client means http.DefaultClient, so no
// timeout is imposed beyond the transport's own.
func NewAdapter(endpoints Endpoints, httpc *http.Client) *Adapter {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	ep := endpoints.withDefaults()
	return &Adapter{
		endpoints: ep,
		httpc:     httpc,
		cerebras:  &chatClient{provider: types.ProviderCerebras, url: ep.CerebrasBaseURL + "/v1/chat/completions", httpc: httpc},
		groq:      &chatClient{provider: types.ProviderGroq, url: ep.GroqBaseURL + "/openai/v1/chat/completions", httpc: httpc},
		gemini:    &geminiClient{baseURL: ep.GeminiBaseURL, httpc: httpc},
	}
}

// Complete validates the request, enforces image capability, then performs
// the provider call. Validation failures never reach the network.
func (a *Adapter) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", &MissingAPIKeyError{Provider: req.Provider}
	}
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("no model selected for %s", req.Provider)
	}
	if req.Image != nil {
		if err := CheckImageSupport(req.Provider, req.Model); err != nil {
			return "", err
		}
	}
	switch req.Provider {
	case types.ProviderCerebras:
		return a.cerebras.complete(ctx, req)
	case types.ProviderGroq:
		return a.groq.complete(ctx, req)
	case types.ProviderGemini:
		return a.gemini.complete(ctx, req)
	default:
		return "", fmt.Errorf("unknown provider %q", req.Provider)
	}
}

var _ Completer = (*Adapter)(nil)
