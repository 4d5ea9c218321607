package calllog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// Store 记录每一次 provider 调用的 prompt / 原始回复 / 错误，便于排查解析失败。
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Record 是一次模型调用的摘要。
type Record struct {
	ID         int64  `json:"id"`
	TraceID    string `json:"trace_id"`
	Timestamp  int64  `json:"ts"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Feature    string `json:"feature"`
	Prompt     string `json:"prompt"`
	RawOutput  string `json:"raw_output"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

const maxRecentLimit = 500

// NewStore opens the SQLite call log at path.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("call log path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(2)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS call_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			trace_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			feature TEXT NOT NULL,
			prompt TEXT,
			raw_output TEXT,
			error TEXT,
			duration_ms INTEGER DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_call_log_ts ON call_log(ts DESC)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("call log schema: %w", err)
		}
	}
	return nil
}

// Record inserts rec.
func (s *Store) Record(ctx context.Context, rec Record) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return fmt.Errorf("call log store 已关闭")
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO call_log (trace_id, ts, provider, model, feature, prompt, raw_output, error, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TraceID, rec.Timestamp, rec.Provider, rec.Model, rec.Feature, rec.Prompt, rec.RawOutput, rec.Error, rec.DurationMs)
	return err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = 50
	}
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return nil, fmt.Errorf("call log store 已关闭")
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, trace_id, ts, provider, model, feature, prompt, raw_output, error, duration_ms
		 FROM call_log ORDER BY ts DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Record, 0, limit)
	for rows.Next() {
		var rec Record
		var prompt, raw, errText sql.NullString
		if err := rows.Scan(&rec.ID, &rec.TraceID, &rec.Timestamp, &rec.Provider, &rec.Model, &rec.Feature,
			&prompt, &raw, &errText, &rec.DurationMs); err != nil {
			return nil, err
		}
		rec.Prompt, rec.RawOutput, rec.Error = prompt.String, raw.String, errText.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close 关闭底层 DB。
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
