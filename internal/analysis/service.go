package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vectora/internal/ai"
	"vectora/internal/gateway/capture"
	"vectora/internal/gateway/notifier"
	"vectora/internal/gateway/provider"
	"vectora/internal/logger"
	"vectora/internal/metrics"
	"vectora/internal/pkg/text"
	"vectora/internal/prompt"
	"vectora/internal/store"
	"vectora/internal/store/calllog"
	"vectora/internal/types"

	"github.com/google/uuid"
)

const rawPreviewLen = 300

// ErrEmptyText is returned when a text analysis is requested without a selection.
var ErrEmptyText = errors.New("Please select text to analyze")

// SettingsProvider exposes the current user settings.
type SettingsProvider interface {
	Snapshot() types.Settings
}

type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (capture.Image, error)
}

type ScreenCapturer interface {
	Capture(ctx context.Context, pageURL string, crop capture.Crop) (capture.Image, error)
}

// CallRecorder 持久化每次 provider 调用（可选）。
type CallRecorder interface {
	Record(ctx context.Context, rec calllog.Record) error
}

// ServiceParams 汇总 Service 的依赖。Calls / Images / Screens 可以为空。
type ServiceParams struct {
	Settings  SettingsProvider
	Completer provider.Completer
	Notifier  notifier.Notifier
	History   store.HistoryStore
	Calls     CallRecorder
	Images    ImageFetcher
	Screens   ScreenCapturer
	Now       func() time.Time
}

// Service drives one analysis per request:
// KeyCheck -> Prompting -> Calling -> Normalizing -> Done | Failed.
// There are no retries and a failed analysis never produces a score.
type Service struct {
	settings  SettingsProvider
	completer provider.Completer
	notifier  notifier.Notifier
	history   store.HistoryStore
	calls     CallRecorder
	images    ImageFetcher
	screens   ScreenCapturer
	now       func() time.Time
}

func NewService(p ServiceParams) *Service {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		settings:  p.Settings,
		completer: p.Completer,
		notifier:  p.Notifier,
		history:   p.History,
		calls:     p.Calls,
		images:    p.Images,
		screens:   p.Screens,
		now:       now,
	}
}

type TextRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type ImageRequest struct {
	ImageURL string `json:"imageUrl"`
	PageURL  string `json:"url"`
}

// ScreenRequest 二选一：Image 是扩展已裁好的 data URI；为空时按 Crop 在服务端截图。
type ScreenRequest struct {
	PageURL string       `json:"url"`
	Crop    capture.Crop `json:"crop"`
	Image   string       `json:"image,omitempty"`
}

// CapabilityReport answers getModelCapabilities.
type CapabilityReport struct {
	Provider     types.Provider `json:"provider"`
	Model        string         `json:"model"`
	Capabilities []string       `json:"capabilities"`
}

// job 是进入状态机之前已经确定的输入。
type job struct {
	feature types.Feature
	url     string
	text    string
	image   func(ctx context.Context) (capture.Image, error)
}

func (s *Service) AnalyzeText(ctx context.Context, req TextRequest) (types.AnalysisResult, error) {
	return s.run(ctx, job{feature: types.FeatureText, url: req.URL, text: req.Text})
}

// AnalyzeImage downloads the image at ImageURL and asks the active model about it.
func (s *Service) AnalyzeImage(ctx context.Context, req ImageRequest) (types.AnalysisResult, error) {
	return s.run(ctx, job{
		feature: types.FeatureImage,
		url:     req.PageURL,
		image: func(ctx context.Context) (capture.Image, error) {
			if s.images == nil {
				return capture.Image{}, fmt.Errorf("image download is not configured")
			}
			return s.images.Fetch(ctx, req.ImageURL)
		},
	})
}

// AnalyzeScreen analyzes the screenshot in req.Image, or captures the crop
// rectangle of PageURL when no image was sent. Decoding happens inside the
// state machine so a bad data URI fails like any other image error.
func (s *Service) AnalyzeScreen(ctx context.Context, req ScreenRequest) (types.AnalysisResult, error) {
	return s.run(ctx, job{
		feature: types.FeatureScreen,
		url:     req.PageURL,
		image: func(ctx context.Context) (capture.Image, error) {
			if strings.TrimSpace(req.Image) != "" {
				return capture.DecodeDataURI(req.Image)
			}
			if s.screens == nil {
				return capture.Image{}, fmt.Errorf("screen capture is not configured")
			}
			return s.screens.Capture(ctx, req.PageURL, req.Crop)
		},
	})
}

// Capabilities resolves the capability set; empty arguments fall back to
// the active settings.
func (s *Service) Capabilities(providerName, model string) (CapabilityReport, error) {
	settings := s.settings.Snapshot()
	p := settings.Provider
	if strings.TrimSpace(providerName) != "" {
		parsed, ok := types.ParseProvider(providerName)
		if !ok {
			return CapabilityReport{}, fmt.Errorf("unknown provider %q", providerName)
		}
		p = parsed
	}
	model = strings.TrimSpace(model)
	if model == "" {
		_, model = settings.Credentials(p)
	}
	return CapabilityReport{
		Provider:     p,
		Model:        model,
		Capabilities: provider.ResolveCapabilities(p, model).List(),
	}, nil
}

func (s *Service) run(ctx context.Context, j job) (types.AnalysisResult, error) {
	started := s.now()
	traceID := uuid.NewString()
	log := logger.With("trace_id", traceID, "feature", string(j.feature))

	settings := s.settings.Snapshot()
	p, key, model := settings.Active()

	fail := func(err error) (types.AnalysisResult, error) {
		log.Debug("analysis failed", slog.String("state", "failed"), slog.String("error", err.Error()))
		var httpErr *provider.ProviderHTTPError
		if errors.As(err, &httpErr) {
			metrics.ObserveProviderHTTPError(string(httpErr.Provider), httpErr.StatusCode)
		}
		metrics.ObserveAnalysis(string(j.feature), string(p), false, s.now().Sub(started))
		s.notify(ctx, notifier.Notification{
			AIPercent: 0,
			Message:   err.Error(),
			Error:     true,
			Feature:   j.feature,
			URL:       j.url,
			Provider:  string(p),
			Model:     model,
			Timestamp: s.now().UnixMilli(),
		})
		return types.AnalysisResult{}, err
	}

	if j.feature == types.FeatureText && strings.TrimSpace(j.text) == "" {
		return fail(ErrEmptyText)
	}

	log.Debug("analysis state", slog.String("state", "key_check"), slog.String("provider", string(p)))
	if key == "" {
		return fail(&provider.MissingAPIKeyError{Provider: p})
	}

	log.Debug("analysis state", slog.String("state", "prompting"))
	req := provider.Request{
		Provider: p,
		APIKey:   key,
		Model:    model,
		Prompt:   prompt.For(j.feature, j.text),
		TraceID:  traceID,
	}
	if j.image != nil {
		// 先查能力再抓图，避免无意义的下载/截图。
		if err := provider.CheckImageSupport(p, model); err != nil {
			return fail(err)
		}
		img, err := j.image(ctx)
		if err != nil {
			return fail(err)
		}
		req.Image = &provider.ImagePayload{MimeType: img.MimeType, Data: img.Base64()}
	}

	log.Debug("analysis state", slog.String("state", "calling"), slog.String("model", model))
	callStart := s.now()
	raw, callErr := s.completer.Complete(ctx, req)
	s.recordCall(ctx, calllog.Record{
		TraceID:    traceID,
		Timestamp:  callStart.UnixMilli(),
		Provider:   string(p),
		Model:      model,
		Feature:    string(j.feature),
		Prompt:     req.Prompt,
		RawOutput:  raw,
		Error:      errString(callErr),
		DurationMs: s.now().Sub(callStart).Milliseconds(),
	})
	if callErr != nil {
		return fail(callErr)
	}

	log.Debug("analysis state", slog.String("state", "normalizing"), slog.String("raw", text.Truncate(raw, rawPreviewLen)))
	result, err := ai.Normalize(raw)
	if err != nil {
		return fail(err)
	}

	log.Debug("analysis state", slog.String("state", "done"), slog.Int("ai_percent", result.AIPercent))
	now := s.now()
	metrics.ObserveAnalysis(string(j.feature), string(p), true, now.Sub(started))
	s.notify(ctx, notifier.Notification{
		AIPercent: result.AIPercent,
		Message:   result.Message,
		Feature:   j.feature,
		URL:       j.url,
		Provider:  string(p),
		Model:     model,
		Timestamp: now.UnixMilli(),
	})
	if s.history != nil {
		entry := types.HistoryEntry{
			URL:       j.url,
			Feature:   j.feature,
			AIPercent: result.AIPercent,
			Message:   result.Message,
			Timestamp: now.UnixMilli(),
			Provider:  string(p),
			Model:     model,
		}
		if err := s.history.Append(ctx, entry); err != nil {
			log.Warn("history append failed", slog.String("error", err.Error()))
		}
		if err := s.history.SetLastCheck(ctx, result); err != nil {
			log.Warn("last check update failed", slog.String("error", err.Error()))
		}
	}
	return result, nil
}

func (s *Service) notify(ctx context.Context, n notifier.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		logger.Warnf("notify failed: %v", err)
	}
}

func (s *Service) recordCall(ctx context.Context, rec calllog.Record) {
	if s.calls == nil {
		return
	}
	if err := s.calls.Record(ctx, rec); err != nil {
		logger.Warnf("call log write failed: %v", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
