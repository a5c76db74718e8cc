package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eventledger/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 documents 表的文档存储
type GormStore struct {
	db  *gorm.DB
	hub *Hub
}

// NewGormStore 创建数据库存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, hub: NewHub()}
}

func (s *GormStore) Get(ctx context.Context, path string) ([]byte, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).Where("path = ?", path).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取文档 %s 失败: %w", path, err)
	}
	return []byte(doc.Value), nil
}

func (s *GormStore) List(ctx context.Context, prefix string) (map[string][]byte, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).
		Where("path LIKE ?", escapeLikeValue(prefix)+"%").
		Order("path").
		Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("查询文档 %s* 失败: %w", prefix, err)
	}
	out := make(map[string][]byte, len(docs))
	for _, d := range docs {
		out[d.Path] = []byte(d.Value)
	}
	return out, nil
}

func (s *GormStore) Set(ctx context.Context, path string, value []byte) error {
	doc := models.Document{Path: path, Value: string(value)}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&doc).Error; err != nil {
		return fmt.Errorf("写入文档 %s 失败: %w", path, err)
	}
	s.hub.Publish(Change{Path: path, Value: clone(value)})
	return nil
}

func (s *GormStore) Delete(ctx context.Context, path string) error {
	if err := s.db.WithContext(ctx).Where("path = ?", path).Delete(&models.Document{}).Error; err != nil {
		return fmt.Errorf("删除文档 %s 失败: %w", path, err)
	}
	s.hub.Publish(Change{Path: path})
	return nil
}

// Subscribe 仅能感知本进程内的写入
func (s *GormStore) Subscribe(ctx context.Context, prefix string) (<-chan Change, error) {
	return s.hub.Subscribe(ctx, prefix), nil
}

// escapeLikeValue 转义 LIKE 查询中的通配符 % 和 _
func escapeLikeValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
