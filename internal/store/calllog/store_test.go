package calllog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndRecent(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, Record{TraceID: "a", Timestamp: 100, Provider: "groq", Model: "m1", Feature: "text", Prompt: "p", RawOutput: "{}"}))
	require.NoError(t, s.Record(ctx, Record{TraceID: "b", Timestamp: 200, Provider: "gemini", Model: "m2", Feature: "image", Error: "boom", DurationMs: 12}))

	recs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "b", recs[0].TraceID)
	assert.Equal(t, "boom", recs[0].Error)
	assert.EqualValues(t, 12, recs[0].DurationMs)
	assert.Equal(t, "a", recs[1].TraceID)
	assert.Equal(t, "{}", recs[1].RawOutput)

	recs, err = s.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestStore_Closed(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "calls.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Error(t, s.Record(context.Background(), Record{}))
	assert.NoError(t, s.Close())
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}
