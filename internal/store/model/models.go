package model

import (
	"gorm.io/datatypes"
)

const (
	KeyUsageHistory = "usageHistory"
	KeyLastCheck    = "lastCheck"
)

// KVModel mirrors the extension's local key/value storage: one JSON value per key.
type KVModel struct {
	Key           string         `gorm:"column:kv_key;primaryKey"`
	Value         datatypes.JSON `gorm:"column:kv_value"`
	UpdatedAtUnix int64          `gorm:"column:updated_at"`
}

func (KVModel) TableName() string { return "kv_store" }
