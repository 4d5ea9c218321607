package notifier

import (
	"context"

	"vectora/internal/types"
)

// TextNotifier defines a minimal text notification interface.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}

// Notification 是展示给用户的一条检测结果（成功或失败）。
type Notification struct {
	AIPercent int           `json:"ai_percent"`
	Message   string        `json:"message"`
	Error     bool          `json:"error"`
	Feature   types.Feature `json:"feature,omitempty"`
	URL       string        `json:"url,omitempty"`
	Provider  string        `json:"provider,omitempty"`
	Model     string        `json:"model,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// Notifier displays a notification. Errors are reported but never change
// the outcome of the analysis that produced it.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
