package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatgate/models"
)

// MemoryStore 进程内消息存储，用于本地调试和测试，重启后数据丢失
type MemoryStore struct {
	mu       sync.RWMutex
	messages []models.Message
	nextID   int64
}

// NewMemoryStore 创建内存消息存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

// Create 写入一条消息并分配 ID
func (s *MemoryStore) Create(ctx context.Context, msg *models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = s.nextID
	s.nextID++
	s.messages = append(s.messages, *msg)
	return nil
}

// List 按写入顺序返回全部消息
func (s *MemoryStore) List(ctx context.Context) ([]models.Message, error) {
	return s.filter(ctx, func(models.Message) bool { return true })
}

// ListRecent 按时间倒序返回最近 n 条，时间相同按 ID 倒序
func (s *MemoryStore) ListRecent(ctx context.Context, n int) ([]models.Message, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].ID > list[j].ID
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list, nil
}

// ListByModel 返回指定模型的消息
func (s *MemoryStore) ListByModel(ctx context.Context, model string) ([]models.Message, error) {
	return s.filter(ctx, func(m models.Message) bool { return m.Model == model })
}

// ListSince 返回 since 之后写入的消息
func (s *MemoryStore) ListSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	return s.filter(ctx, func(m models.Message) bool { return m.Timestamp.After(since) })
}

// DeleteAll 清空全部消息
func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	return nil
}

func (s *MemoryStore) filter(ctx context.Context, keep func(models.Message) bool) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]models.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if keep(m) {
			list = append(list, m)
		}
	}
	return list, nil
}
