package provider

import (
	"context"

	"vectora/internal/types"
)

// ImagePayload is a base64 image handed to a vision-capable model.
type ImagePayload struct {
	MimeType string
	Data     string
}

// DataURI renders the payload as data:<mime>;base64,<data>.
func (p ImagePayload) DataURI() string {
	return "data:" + p.MimeType + ";base64," + p.Data
}

// Request 是一次归一化后的模型调用。
type Request struct {
	Provider types.Provider
	APIKey   string
	Model    string
	Prompt   string
	Image    *ImagePayload
	TraceID  string
}

// Completer performs one provider call and returns the raw reply text.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

const (
	chatTemperature = 0.3
	chatMaxTokens   = 256
)
