package store

import (
	"context"

	"vectora/internal/types"
)

// HistoryStore 持久化最近的检测历史与 "last check" 槽位。
//
// Append 是读-改-写：两个同时完成的检测可能互相覆盖，其中一条丢失。
// 这里不加锁，与扩展存储的行为保持一致。
type HistoryStore interface {
	Append(ctx context.Context, entry types.HistoryEntry) error
	List(ctx context.Context) ([]types.HistoryEntry, error)
	Clear(ctx context.Context) error
	SetLastCheck(ctx context.Context, result types.AnalysisResult) error
	LastCheck(ctx context.Context) (types.AnalysisResult, bool, error)
}

// PrependBounded returns entry followed by list, cut to at most limit items.
// limit is clamped to types.DefaultHistoryLimit. The input slice is not modified.
func PrependBounded(list []types.HistoryEntry, entry types.HistoryEntry, limit int) []types.HistoryEntry {
	if limit <= 0 || limit > types.DefaultHistoryLimit {
		limit = types.DefaultHistoryLimit
	}
	n := len(list) + 1
	if n > limit {
		n = limit
	}
	out := make([]types.HistoryEntry, 0, n)
	out = append(out, entry)
	for _, e := range list {
		if len(out) == n {
			break
		}
		out = append(out, e)
	}
	return out
}
