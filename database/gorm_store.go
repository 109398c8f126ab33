package database

import (
	"context"
	"time"

	"chatgate/models"

	"gorm.io/gorm"
)

// GormStore 基于 gorm 的消息存储
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建 gorm 消息存储
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Create 写入一条消息，ID 由数据库分配后回填
func (s *GormStore) Create(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

// List 按 ID 升序返回全部消息
func (s *GormStore) List(ctx context.Context) ([]models.Message, error) {
	var list []models.Message
	err := s.db.WithContext(ctx).Order("id ASC").Find(&list).Error
	return list, err
}

// ListRecent 按时间倒序返回最近 n 条
func (s *GormStore) ListRecent(ctx context.Context, n int) ([]models.Message, error) {
	var list []models.Message
	err := s.db.WithContext(ctx).
		Order("timestamp DESC").
		Order("id DESC").
		Limit(n).
		Find(&list).Error
	return list, err
}

// ListByModel 返回指定模型的消息
func (s *GormStore) ListByModel(ctx context.Context, model string) ([]models.Message, error) {
	var list []models.Message
	err := s.db.WithContext(ctx).Where("model = ?", model).Order("id ASC").Find(&list).Error
	return list, err
}

// ListSince 返回 since 之后写入的消息
func (s *GormStore) ListSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	var list []models.Message
	err := s.db.WithContext(ctx).Where("timestamp > ?", since).Order("id ASC").Find(&list).Error
	return list, err
}

// DeleteAll 删除全部消息
func (s *GormStore) DeleteAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.Message{}).Error
}

// Close 关闭底层连接池
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
