package gormstore

import (
	"context"
	"path/filepath"
	"testing"

	"vectora/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := NewGormStore(filepath.Join(t.TempDir(), "data", "history.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStore_HistoryRingBuffer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	list, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for i := 0; i < 60; i++ {
		require.NoError(t, s.Append(ctx, types.HistoryEntry{
			URL: "https://example.com", Feature: types.FeatureText, AIPercent: i % 101,
			Timestamp: int64(i), Provider: "groq", Model: "m",
		}))
	}
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, types.DefaultHistoryLimit)
	assert.Equal(t, int64(59), list[0].Timestamp)
	assert.Equal(t, int64(10), list[len(list)-1].Timestamp)

	require.NoError(t, s.Clear(ctx))
	list, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormStore_LastCheck(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, found, err := s.LastCheck(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.SetLastCheck(ctx, types.AnalysisResult{AIPercent: 12, Message: "first"}))
	require.NoError(t, s.SetLastCheck(ctx, types.AnalysisResult{AIPercent: 88, Message: "second"}))
	res, found, err := s.LastCheck(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, types.AnalysisResult{AIPercent: 88, Message: "second"}, res)
}

func TestNewGormStore_RequiresPath(t *testing.T) {
	_, err := NewGormStore("  ", 10)
	assert.Error(t, err)
}
