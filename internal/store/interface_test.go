package store

import (
	"testing"

	"vectora/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestPrependBounded(t *testing.T) {
	var list []types.HistoryEntry
	for i := 0; i < 120; i++ {
		list = PrependBounded(list, types.HistoryEntry{Timestamp: int64(i)}, types.DefaultHistoryLimit)
		assert.LessOrEqual(t, len(list), types.DefaultHistoryLimit)
		assert.Equal(t, int64(i), list[0].Timestamp)
	}
	assert.Len(t, list, 50)
	assert.Equal(t, int64(70), list[49].Timestamp)
}

func TestPrependBoundedDoesNotAlias(t *testing.T) {
	orig := []types.HistoryEntry{{Message: "a"}, {Message: "b"}}
	out := PrependBounded(orig, types.HistoryEntry{Message: "new"}, 2)
	assert.Equal(t, []string{"new", "a"}, []string{out[0].Message, out[1].Message})
	assert.Equal(t, "a", orig[0].Message)
}

func TestPrependBoundedClampsLargeLimit(t *testing.T) {
	var list []types.HistoryEntry
	for i := 0; i < 120; i++ {
		list = PrependBounded(list, types.HistoryEntry{Timestamp: int64(i)}, 200)
	}
	assert.Len(t, list, types.DefaultHistoryLimit)
	assert.Equal(t, int64(119), list[0].Timestamp)
}

func TestPrependBoundedDefaultLimit(t *testing.T) {
	out := PrependBounded(nil, types.HistoryEntry{}, 0)
	assert.Len(t, out, 1)
}
