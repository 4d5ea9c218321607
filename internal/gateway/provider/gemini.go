package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"vectora/internal/logger"
	"vectora/internal/types"
)

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// geminiClient calls models/{model}:generateContent with the key as a query parameter.
type geminiClient struct {
	baseURL string
	httpc   *http.Client
}

func (c *geminiClient) endpoint(model, apiKey string) string {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		strings.TrimRight(c.baseURL, "/"), url.PathEscape(model), url.QueryEscape(apiKey))
}

func buildGeminiRequest(req Request) geminiRequest {
	parts := []geminiPart{{Text: req.Prompt}}
	if req.Image != nil {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: req.Image.MimeType, Data: req.Image.Data}})
	}
	return geminiRequest{Contents: []geminiContent{{Parts: parts}}}
}

func (c *geminiClient) complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(buildGeminiRequest(req))
	if err != nil {
		return "", err
	}
	endpoint := c.endpoint(req.Model, req.APIKey)
	logRequest(req, endpoint, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", types.ProviderGemini, stripURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", httpError(types.ProviderGemini, resp)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s response decode failed: %w", types.ProviderGemini, err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%s returned no candidates", types.ProviderGemini)
	}
	reply := out.Candidates[0].Content.Parts[0].Text
	logger.LogLLMResponse(string(types.ProviderGemini), req.TraceID, reply)
	return reply, nil
}

// stripURL 去掉 *url.Error 外层：它带着完整 URL（含 key），只保留底层错误。
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}
