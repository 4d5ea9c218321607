package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"vectora/internal/analysis"
	vcfg "vectora/internal/config"
	cfgloader "vectora/internal/config/loader"
	"vectora/internal/gateway/capture"
	"vectora/internal/gateway/notifier"
	"vectora/internal/gateway/provider"
	"vectora/internal/logger"
	"vectora/internal/metrics"
	"vectora/internal/store"
	"vectora/internal/store/calllog"
	"vectora/internal/store/gormstore"
	apihttp "vectora/internal/transport/http/api"
)

// AppBuilder 按配置组装依赖图。各 *Fn 字段可在测试中替换。
type AppBuilder struct {
	cfg *vcfg.Config

	settingsFn func(vcfg.SettingsConfig) (*cfgloader.SettingsLoader, error)
	historyFn  func(vcfg.StoreConfig) (store.HistoryStore, io.Closer, error)
	callLogFn  func(vcfg.StoreConfig) (*calllog.Store, error)
	adapterFn  func(vcfg.ProvidersConfig) *provider.Adapter
}

type AppBuilderOption func(*AppBuilder)

// WithHistoryStore overrides the persisted history backend.
func WithHistoryStore(h store.HistoryStore) AppBuilderOption {
	return func(b *AppBuilder) {
		b.historyFn = func(vcfg.StoreConfig) (store.HistoryStore, io.Closer, error) {
			return h, nil, nil
		}
	}
}

func NewAppBuilder(cfg *vcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:        cfg,
		settingsFn: buildSettingsLoader,
		historyFn:  buildHistoryStore,
		callLogFn:  buildCallLog,
		adapterFn:  buildAdapter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	metrics.Register()

	var closers []io.Closer
	fail := func(err error) (*App, error) {
		closeAll(closers)
		return nil, err
	}

	settings, err := b.settingsFn(cfg.Settings)
	if err != nil {
		return fail(err)
	}
	history, historyCloser, err := b.historyFn(cfg.Store)
	if err != nil {
		return fail(err)
	}
	if historyCloser != nil {
		closers = append(closers, historyCloser)
	}

	var calls *calllog.Store
	if cfg.Store.CallLogEnabled {
		calls, err = b.callLogFn(cfg.Store)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, calls)
	}

	slot := notifier.NewSlot()
	notifiers := notifier.Multi{slot}
	if tg := newTelegram(cfg.Notify); tg != nil {
		notifiers = append(notifiers, &notifier.TelegramRelay{Sender: tg})
	}

	adapter := b.adapterFn(cfg.Providers)
	fetcher := capture.NewHTTPImageFetcher(nil)
	fetcher.MaxBytes = cfg.Capture.MaxImageBytes

	params := analysis.ServiceParams{
		Settings:  settings,
		Completer: adapter,
		Notifier:  notifiers,
		History:   history,
		Images:    fetcher,
	}
	if calls != nil {
		params.Calls = calls
	}
	if cfg.Capture.BrowserEnabled {
		params.Screens = capture.NewBrowserCapturer(
			cfg.Capture.ViewportWidth,
			cfg.Capture.ViewportHeight,
			time.Duration(cfg.Capture.TimeoutSeconds)*time.Second,
		)
	}
	svc := analysis.NewService(params)

	deps := apihttp.Deps{
		Analyzer:      svc,
		Settings:      settings,
		Models:        adapter,
		History:       history,
		Notifications: slot,
	}
	if calls != nil {
		deps.Calls = calls
	}
	server, err := apihttp.NewServer(apihttp.ServerConfig{
		Addr:    cfg.App.HTTPAddr,
		Deps:    deps,
		Metrics: metrics.Handler(),
	})
	if err != nil {
		return fail(err)
	}

	return &App{
		cfg:      cfg,
		settings: settings,
		service:  svc,
		http:     server,
		closers:  closers,
		Summary:  newStartupSummary(cfg, settings.Snapshot()),
	}, nil
}

func buildSettingsLoader(cfg vcfg.SettingsConfig) (*cfgloader.SettingsLoader, error) {
	l, err := cfgloader.NewSettingsLoader(cfg.Path, cfg.Watch)
	if err != nil {
		return nil, fmt.Errorf("load settings failed: %w", err)
	}
	return l, nil
}

func buildHistoryStore(cfg vcfg.StoreConfig) (store.HistoryStore, io.Closer, error) {
	s, err := gormstore.NewGormStore(cfg.HistoryPath, cfg.HistoryLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("open history store failed: %w", err)
	}
	return s, s, nil
}

func buildCallLog(cfg vcfg.StoreConfig) (*calllog.Store, error) {
	s, err := calllog.NewStore(cfg.CallLogPath)
	if err != nil {
		return nil, fmt.Errorf("open call log failed: %w", err)
	}
	return s, nil
}

// buildAdapter 只有在配置了 timeout_seconds 时才给 provider 调用设置超时。
func buildAdapter(cfg vcfg.ProvidersConfig) *provider.Adapter {
	var httpc *http.Client
	if cfg.TimeoutSeconds > 0 {
		httpc = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	}
	return provider.NewAdapter(provider.Endpoints{
		CerebrasBaseURL: cfg.CerebrasBaseURL,
		GroqBaseURL:     cfg.GroqBaseURL,
		GeminiBaseURL:   cfg.GeminiBaseURL,
	}, httpc)
}

func newTelegram(cfg vcfg.NotifyConfig) *notifier.Telegram {
	if !cfg.Telegram.Enabled {
		return nil
	}
	return notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
}

func closeAll(closers []io.Closer) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Warnf("close failed: %v", err)
		}
	}
}
