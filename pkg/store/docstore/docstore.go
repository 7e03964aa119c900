package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"video_promo_shop/pkg/store"
)

// Collection collections 表的一行：一个集合一条记录，data 为 jsonb。
// rev 单调递增，给多级缓存一个确定的先后判断依据。
type Collection struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Data      []byte    `gorm:"type:jsonb;not null"`
	Rev       int64     `gorm:"not null;default:1"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Collection) TableName() string {
	return "collections"
}

// Store Postgres 后端的集合存储，键控 jsonb 覆盖写
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Read(key string) ([]byte, error) {
	var row Collection
	err := s.db.First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", key, err)
	}
	return row.Data, nil
}

func (s *Store) Write(key string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("write collection %s: invalid JSON", key)
	}

	row := Collection{Key: key, Data: data, Rev: 1, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"data":       data,
			"rev":        gorm.Expr("collections.rev + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	// 不存在也返回成功，删除语义幂等
	if err := s.db.Delete(&Collection{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("delete collection %s: %w", key, err)
	}
	return nil
}

func (s *Store) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&Collection{}).Order("key").Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return keys, nil
}
