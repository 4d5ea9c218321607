package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"vectora/internal/logger"
	"vectora/internal/types"

	"golang.org/x/sync/errgroup"
)

// ModelInfo is one selectable model with its resolved capabilities.
type ModelInfo struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities"`
}

// ListModels fetches the live model catalogue of p and annotates each entry
// through ResolveCapabilities.
func (a *Adapter) ListModels(ctx context.Context, p types.Provider, apiKey string) ([]ModelInfo, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &MissingAPIKeyError{Provider: p}
	}
	var ids []string
	var err error
	switch p {
	case types.ProviderCerebras:
		ids, err = a.listOpenAIModels(ctx, p, a.endpoints.CerebrasBaseURL+"/v1/models", apiKey)
	case types.ProviderGroq:
		ids, err = a.listOpenAIModels(ctx, p, a.endpoints.GroqBaseURL+"/openai/v1/models", apiKey)
	case types.ProviderGemini:
		ids, err = a.listGeminiModels(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown provider %q", p)
	}
	if err != nil {
		return nil, err
	}
	out := make([]ModelInfo, 0, len(ids))
	for _, id := range ids {
		out = append(out, ModelInfo{ID: id, Capabilities: ResolveCapabilities(p, id).List()})
	}
	return out, nil
}

// ListAllModels queries every provider concurrently. A provider without a
// key or whose listing fails contributes an empty list.
func (a *Adapter) ListAllModels(ctx context.Context, s types.Settings) map[types.Provider][]ModelInfo {
	var mu sync.Mutex
	out := make(map[types.Provider][]ModelInfo, len(types.Providers))
	var g errgroup.Group
	for _, p := range types.Providers {
		p := p
		g.Go(func() error {
			key, _ := s.Credentials(p)
			models := []ModelInfo{}
			if key != "" {
				listed, err := a.ListModels(ctx, p, key)
				if err != nil {
					logger.Warnf("[AI] %s 模型列表获取失败: %v", p, err)
				} else {
					models = listed
				}
			}
			mu.Lock()
			out[p] = models
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Adapter) listOpenAIModels(ctx context.Context, p types.Provider, endpoint, apiKey string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s model list failed: %w", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, httpError(p, resp)
	}
	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s model list decode failed: %w", p, err)
	}
	ids := make([]string, 0, len(body.Data))
	for _, m := range body.Data {
		if id := strings.TrimSpace(m.ID); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (a *Adapter) listGeminiModels(ctx context.Context, apiKey string) ([]string, error) {
	endpoint := a.endpoints.GeminiBaseURL + "/v1beta/models?key=" + url.QueryEscape(apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s model list failed: %w", types.ProviderGemini, stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, httpError(types.ProviderGemini, resp)
	}
	var body struct {
		Models []struct {
			Name                       string   `json:"name"`
			SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s model list decode failed: %w", types.ProviderGemini, err)
	}
	ids := make([]string, 0, len(body.Models))
	for _, m := range body.Models {
		if !containsString(m.SupportedGenerationMethods, "generateContent") {
			continue
		}
		ids = append(ids, strings.TrimPrefix(m.Name, "models/"))
	}
	return ids, nil
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
