package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vectora/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotLastWriteWins(t *testing.T) {
	s := NewSlot()
	_, ok := s.Latest()
	assert.False(t, ok)

	_ = s.Notify(context.Background(), Notification{AIPercent: 10, Message: "a"})
	_ = s.Notify(context.Background(), Notification{AIPercent: 90, Message: "b"})
	n, ok := s.Latest()
	assert.True(t, ok)
	assert.Equal(t, 90, n.AIPercent)
	assert.Equal(t, "b", n.Message)
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, Notification) error {
	f.calls++
	return errors.New("down")
}

func TestMultiContinuesPastFailures(t *testing.T) {
	bad := &failingNotifier{}
	slot := NewSlot()
	err := Multi{bad, nil, slot}.Notify(context.Background(), Notification{AIPercent: 5})
	assert.NoError(t, err)
	assert.Equal(t, 1, bad.calls)
	n, ok := slot.Latest()
	assert.True(t, ok)
	assert.Equal(t, 5, n.AIPercent)
}

func TestRenderMarkdown(t *testing.T) {
	md := FromNotification(Notification{
		AIPercent: 73, Message: "uniform ```tone```", Feature: types.FeatureText,
		URL: "https://example.com/post", Provider: "groq", Model: "llama",
	}).RenderMarkdown()
	assert.True(t, strings.HasPrefix(md, "🔎 AI Involvement: 73%"))
	assert.Contains(t, md, "- uniform '''tone'''")
	assert.Contains(t, md, "- Page: https://example.com/post")
	assert.Contains(t, md, "- groq llama")
	assert.Contains(t, md, "Powered by Vectora")

	failed := FromNotification(Notification{Error: true, Message: "no key"}).RenderMarkdown()
	assert.Contains(t, failed, "AI check failed")
	assert.Contains(t, failed, "- no key")
}

func TestTelegramRelay(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN", "42")
	tg.APIBase = srv.URL
	relay := &TelegramRelay{Sender: tg}
	require.NoError(t, relay.Notify(context.Background(), Notification{AIPercent: 61, Message: "likely AI"}))
	assert.Equal(t, "42", got["chat_id"])
	assert.Contains(t, got["text"], "AI Involvement: 61%")
}

func TestTelegramIncompleteConfig(t *testing.T) {
	assert.Error(t, NewTelegram("", "").SendText(context.Background(), "x"))
}

func TestTelegramRelayHonorsCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	tg := NewTelegram("TOKEN", "42")
	tg.APIBase = srv.URL
	relay := &TelegramRelay{Sender: tg}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	started := time.Now()
	err := relay.Notify(ctx, Notification{AIPercent: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(started), 5*time.Second)
}
