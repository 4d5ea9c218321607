package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"vectora/internal/ai"
	"vectora/internal/gateway/capture"
	"vectora/internal/gateway/notifier"
	"vectora/internal/gateway/provider"
	"vectora/internal/store/calllog"
	"vectora/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticSettings types.Settings

func (s staticSettings) Snapshot() types.Settings { return types.Settings(s) }

type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req provider.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) Append(ctx context.Context, e types.HistoryEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *MockHistory) List(ctx context.Context) ([]types.HistoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.HistoryEntry), args.Error(1)
}
func (m *MockHistory) Clear(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockHistory) SetLastCheck(ctx context.Context, r types.AnalysisResult) error {
	return m.Called(ctx, r).Error(0)
}
func (m *MockHistory) LastCheck(ctx context.Context) (types.AnalysisResult, bool, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.AnalysisResult), args.Bool(1), args.Error(2)
}

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (capture.Image, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(capture.Image), args.Error(1)
}

type memCalls struct{ recs []calllog.Record }

func (m *memCalls) Record(_ context.Context, rec calllog.Record) error {
	m.recs = append(m.recs, rec)
	return nil
}

type countingTransport struct{ n atomic.Int32 }

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.n.Add(1)
	return nil, errors.New("network disabled in test")
}

var fixedNow = time.UnixMilli(1_700_000_000_000)

func groqSettings() staticSettings {
	return staticSettings{Provider: types.ProviderGroq, GroqAPIKey: "gsk_test", GroqModel: "llama-3.3-70b-versatile"}
}

func newTestService(settings SettingsProvider, c provider.Completer, h *MockHistory) (*Service, *notifier.Slot, *memCalls) {
	slot := notifier.NewSlot()
	calls := &memCalls{}
	svc := NewService(ServiceParams{
		Settings:  settings,
		Completer: c,
		Notifier:  slot,
		History:   h,
		Calls:     calls,
		Now:       func() time.Time { return fixedNow },
	})
	return svc, slot, calls
}

func TestAnalyzeText_Done(t *testing.T) {
	completer := new(MockCompleter)
	history := new(MockHistory)
	svc, slot, calls := newTestService(groqSettings(), completer, history)
	ctx := context.Background()

	completer.On("Complete", ctx, mock.MatchedBy(func(r provider.Request) bool {
		return r.Provider == types.ProviderGroq && r.APIKey == "gsk_test" && r.Image == nil &&
			r.TraceID != "" && r.Model == "llama-3.3-70b-versatile"
	})).Return("```json\n{\"ai_percent\": 72, \"reason\": \"Uniform cadence\"}\n```", nil)
	history.On("Append", ctx, types.HistoryEntry{
		URL: "https://example.com/post", Feature: types.FeatureText, AIPercent: 72,
		Message: "Uniform cadence", Timestamp: fixedNow.UnixMilli(), Provider: "groq", Model: "llama-3.3-70b-versatile",
	}).Return(nil)
	history.On("SetLastCheck", ctx, types.AnalysisResult{AIPercent: 72, Message: "Uniform cadence"}).Return(nil)

	res, err := svc.AnalyzeText(ctx, TextRequest{Text: "some prose", URL: "https://example.com/post"})
	require.NoError(t, err)
	assert.Equal(t, 72, res.AIPercent)

	n, ok := slot.Latest()
	require.True(t, ok)
	assert.False(t, n.Error)
	assert.Equal(t, 72, n.AIPercent)
	require.Len(t, calls.recs, 1)
	assert.Equal(t, "text", calls.recs[0].Feature)
	completer.AssertExpectations(t)
	history.AssertExpectations(t)
}

func TestAnalyzeText_EmptySelection(t *testing.T) {
	completer := new(MockCompleter)
	history := new(MockHistory)
	svc, slot, _ := newTestService(groqSettings(), completer, history)

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyText)
	n, _ := slot.Latest()
	assert.True(t, n.Error)
	assert.Equal(t, "Please select text to analyze", n.Message)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAnalyzeText_MissingKeyMakesNoHTTPCall(t *testing.T) {
	transport := &countingTransport{}
	adapter := provider.NewAdapter(provider.Endpoints{}, &http.Client{Transport: transport})
	history := new(MockHistory)
	settings := staticSettings{Provider: types.ProviderCerebras, CerebrasModel: "llama3.1-8b", GroqAPIKey: "gsk_other"}
	svc, slot, _ := newTestService(settings, adapter, history)

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "hello"})
	var missing *provider.MissingAPIKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, types.ProviderCerebras, missing.Provider)
	assert.Equal(t, int32(0), transport.n.Load())

	n, _ := slot.Latest()
	assert.True(t, n.Error)
	assert.Equal(t, 0, n.AIPercent)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "SetLastCheck", mock.Anything, mock.Anything)
}

func TestAnalyzeImage_CerebrasRejectedBeforeFetch(t *testing.T) {
	transport := &countingTransport{}
	adapter := provider.NewAdapter(provider.Endpoints{}, &http.Client{Transport: transport})
	fetcher := new(MockFetcher)
	settings := staticSettings{Provider: types.ProviderCerebras, CerebrasAPIKey: "csk", CerebrasModel: "llama3.1-8b"}
	svc := NewService(ServiceParams{Settings: settings, Completer: adapter, Images: fetcher})

	_, err := svc.AnalyzeImage(context.Background(), ImageRequest{ImageURL: "https://example.com/a.png"})
	var unsupported *provider.UnsupportedCapabilityError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, types.CapabilityImage, unsupported.Capability)
	assert.Equal(t, int32(0), transport.n.Load())
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestAnalyzeImage_GroqVision(t *testing.T) {
	completer := new(MockCompleter)
	fetcher := new(MockFetcher)
	history := new(MockHistory)
	settings := staticSettings{Provider: types.ProviderGroq, GroqAPIKey: "gsk", GroqModel: "meta-llama/llama-4-scout-17b-16e-instruct"}
	svc := NewService(ServiceParams{Settings: settings, Completer: completer, Images: fetcher, History: history})
	ctx := context.Background()

	fetcher.On("Fetch", ctx, "https://cdn.example.com/cat.jpg").
		Return(capture.Image{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}, nil)
	completer.On("Complete", ctx, mock.MatchedBy(func(r provider.Request) bool {
		return r.Image != nil && r.Image.MimeType == "image/jpeg" && r.Image.Data == "/9j/"
	})).Return(`The image looks 35% synthetic`, nil)
	history.On("Append", ctx, mock.AnythingOfType("types.HistoryEntry")).Return(nil)
	history.On("SetLastCheck", ctx, mock.Anything).Return(nil)

	res, err := svc.AnalyzeImage(ctx, ImageRequest{ImageURL: "https://cdn.example.com/cat.jpg", PageURL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 35, res.AIPercent)
	assert.Equal(t, "The image looks 35% synthetic", res.Message)
	completer.AssertExpectations(t)
	fetcher.AssertExpectations(t)
}

func TestAnalyze_UnparsableReplyIsFailure(t *testing.T) {
	completer := new(MockCompleter)
	history := new(MockHistory)
	svc, slot, calls := newTestService(groqSettings(), completer, history)
	completer.On("Complete", mock.Anything, mock.Anything).Return("I cannot tell.", nil)

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "x"})
	var unparsable *ai.UnparsableResponseError
	require.ErrorAs(t, err, &unparsable)
	n, _ := slot.Latest()
	assert.True(t, n.Error)
	assert.Equal(t, 0, n.AIPercent)
	require.Len(t, calls.recs, 1)
	assert.Equal(t, "I cannot tell.", calls.recs[0].RawOutput)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAnalyze_ProviderErrorPropagates(t *testing.T) {
	completer := new(MockCompleter)
	svc, _, calls := newTestService(groqSettings(), completer, new(MockHistory))
	httpErr := &provider.ProviderHTTPError{Provider: types.ProviderGroq, StatusCode: 429, Message: "rate limited"}
	completer.On("Complete", mock.Anything, mock.Anything).Return("", httpErr)

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "x"})
	assert.ErrorIs(t, err, httpErr)
	require.Len(t, calls.recs, 1)
	assert.Contains(t, calls.recs[0].Error, "HTTP 429")
	completer.AssertNumberOfCalls(t, "Complete", 1)
}

func TestAnalyzeScreen_DataURI(t *testing.T) {
	completer := new(MockCompleter)
	history := new(MockHistory)
	settings := staticSettings{Provider: types.ProviderGroq, GroqAPIKey: "gsk", GroqModel: "meta-llama/llama-4-scout-17b-16e-instruct"}
	svc, slot, _ := newTestService(settings, completer, history)
	ctx := context.Background()
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")

	completer.On("Complete", ctx, mock.MatchedBy(func(r provider.Request) bool {
		return r.Image != nil && r.Image.MimeType == "image/gif"
	})).Return(`{"ai_percent": 12, "reason": "photo"}`, nil)
	history.On("Append", ctx, mock.AnythingOfType("types.HistoryEntry")).Return(nil)
	history.On("SetLastCheck", ctx, mock.Anything).Return(nil)

	res, err := svc.AnalyzeScreen(ctx, ScreenRequest{PageURL: "https://p", Image: "data:image/gif;base64," + base64.StdEncoding.EncodeToString(gif)})
	require.NoError(t, err)
	assert.Equal(t, 12, res.AIPercent)
	n, _ := slot.Latest()
	assert.False(t, n.Error)
	assert.Equal(t, types.FeatureScreen, n.Feature)
}

func TestAnalyzeScreen_BadDataURIFails(t *testing.T) {
	completer := new(MockCompleter)
	history := new(MockHistory)
	settings := staticSettings{Provider: types.ProviderGroq, GroqAPIKey: "gsk", GroqModel: "meta-llama/llama-4-scout-17b-16e-instruct"}
	svc, slot, calls := newTestService(settings, completer, history)

	_, err := svc.AnalyzeScreen(context.Background(), ScreenRequest{PageURL: "https://p", Image: "data:image/png,raw"})
	require.Error(t, err)
	n, ok := slot.Latest()
	require.True(t, ok)
	assert.True(t, n.Error)
	assert.Equal(t, err.Error(), n.Message)
	assert.Empty(t, calls.recs)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
	history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)

	// 没有 key 时先报缺 key，图片根本不解码。
	_, err = NewService(ServiceParams{
		Settings:  staticSettings{Provider: types.ProviderGroq},
		Completer: completer,
	}).AnalyzeScreen(context.Background(), ScreenRequest{Image: "garbage"})
	var keyErr *provider.MissingAPIKeyError
	assert.ErrorAs(t, err, &keyErr)
}

func TestCapabilities(t *testing.T) {
	settings := staticSettings{Provider: types.ProviderGemini, GeminiModel: "gemini-2.0-flash"}
	svc := NewService(ServiceParams{Settings: settings})

	rep, err := svc.Capabilities("", "")
	require.NoError(t, err)
	assert.Equal(t, types.ProviderGemini, rep.Provider)
	assert.Equal(t, "gemini-2.0-flash", rep.Model)
	assert.Contains(t, rep.Capabilities, "image")

	rep, err = svc.Capabilities("cerebras", "llama3.1-8b")
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, rep.Capabilities)

	_, err = svc.Capabilities("openai", "")
	assert.Error(t, err)
}
