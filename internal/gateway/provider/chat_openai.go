package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"vectora/internal/logger"
	"vectora/internal/pkg/jsonutil"
	"vectora/internal/pkg/text"
	"vectora/internal/types"
)

// 中文说明：
// chatClient 封装 OpenAI 兼容的 /chat/completions 接口，Cerebras 与 Groq 共用。
// 不做重试：任何非 2xx 直接返回 ProviderHTTPError。

type chatClient struct {
	provider types.Provider
	url      string
	httpc    *http.Client
}

type chatImageURL struct {
	URL string `json:"url"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func buildChatRequest(req Request) chatRequest {
	var content any = req.Prompt
	if req.Image != nil {
		content = []chatContentPart{
			{Type: "text", Text: req.Prompt},
			{Type: "image_url", ImageURL: &chatImageURL{URL: req.Image.DataURI()}},
		}
	}
	return chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	}
}

func (c *chatClient) complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(buildChatRequest(req))
	if err != nil {
		return "", err
	}
	logRequest(req, c.url, body)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.provider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", httpError(c.provider, resp)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s response decode failed: %w", c.provider, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.provider)
	}
	reply := out.Choices[0].Message.Content
	logger.LogLLMResponse(string(c.provider), req.TraceID, reply)
	return reply, nil
}

// httpError reads the upstream error envelope ({"error":{"message":...}}),
// which OpenAI-compatible APIs and Gemini share.
func httpError(p types.Provider, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	msg := ""
	if json.Unmarshal(raw, &envelope) == nil {
		msg = strings.TrimSpace(envelope.Error.Message)
	}
	if msg == "" {
		msg = text.Head(strings.TrimSpace(string(raw)), 200)
	}
	logger.Warnf("[AI] %s 返回 status=%d: %s", p, resp.StatusCode, msg)
	return &ProviderHTTPError{Provider: p, StatusCode: resp.StatusCode, Message: msg}
}

func logRequest(req Request, url string, body []byte) {
	logger.Debugf("[AI] 请求: POST %s provider=%s model=%s key=%s image=%t",
		redactKey(url), req.Provider, req.Model, types.MaskSecret(req.APIKey), req.Image != nil)
	mime, size := "", 0
	if req.Image != nil {
		mime, size = req.Image.MimeType, len(req.Image.Data)
	}
	logger.LogLLMRequest(string(req.Provider), req.Model, req.TraceID, req.Prompt, mime, size, jsonutil.Indent(body))
}

// redactKey masks a ?key= query value so Gemini URLs are safe to log.
func redactKey(url string) string {
	idx := strings.Index(url, "key=")
	if idx == -1 {
		return url
	}
	rest := url[idx+len("key="):]
	end := strings.IndexByte(rest, '&')
	if end == -1 {
		end = len(rest)
	}
	return url[:idx] + "key=" + types.MaskSecret(rest[:end]) + rest[end:]
}
