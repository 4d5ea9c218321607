package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vectora/internal/store"
	storemodel "vectora/internal/store/model"
	"vectora/internal/types"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormStore implements store.HistoryStore on Gorm + SQLite.
type GormStore struct {
	db    *gorm.DB
	limit int
	now   func() time.Time
}

// NewGormStore opens (or creates) the SQLite file at path.
func NewGormStore(path string, limit int) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("gorm store: history db path 不能为空")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&storemodel.KVModel{}); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetMaxIdleConns(2)
	if limit <= 0 || limit > types.DefaultHistoryLimit {
		limit = types.DefaultHistoryLimit
	}
	return &GormStore{db: db, limit: limit, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ store.HistoryStore = (*GormStore)(nil)

// Append reads the list, prepends entry and writes it back. Not transactional.
func (s *GormStore) Append(ctx context.Context, entry types.HistoryEntry) error {
	list, err := s.List(ctx)
	if err != nil {
		return err
	}
	return s.put(ctx, storemodel.KeyUsageHistory, store.PrependBounded(list, entry, s.limit))
}

func (s *GormStore) List(ctx context.Context) ([]types.HistoryEntry, error) {
	var list []types.HistoryEntry
	found, err := s.get(ctx, storemodel.KeyUsageHistory, &list)
	if err != nil || !found {
		return []types.HistoryEntry{}, err
	}
	if list == nil {
		list = []types.HistoryEntry{}
	}
	return list, nil
}

func (s *GormStore) Clear(ctx context.Context) error {
	return s.put(ctx, storemodel.KeyUsageHistory, []types.HistoryEntry{})
}

func (s *GormStore) SetLastCheck(ctx context.Context, result types.AnalysisResult) error {
	return s.put(ctx, storemodel.KeyLastCheck, result)
}

func (s *GormStore) LastCheck(ctx context.Context) (types.AnalysisResult, bool, error) {
	var res types.AnalysisResult
	found, err := s.get(ctx, storemodel.KeyLastCheck, &res)
	return res, found, err
}

func (s *GormStore) get(ctx context.Context, key string, dest any) (bool, error) {
	var row storemodel.KVModel
	err := s.db.WithContext(ctx).Where("kv_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(row.Value) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(row.Value, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *GormStore) put(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	row := storemodel.KVModel{Key: key, Value: datatypes.JSON(raw), UpdatedAtUnix: s.now().Unix()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kv_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"kv_value", "updated_at"}),
	}).Create(&row).Error
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
