package database

import (
	"context"
	"time"

	"chatgate/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const messageColumns = `id, user_message, COALESCE(ai_response, ''), COALESCE(model, ''), timestamp, COALESCE(response_time, 0)`

// PostgresStore 基于 pgx 的消息存储
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 创建 PostgreSQL 消息存储
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Create 写入一条消息，回填数据库分配的 ID
func (s *PostgresStore) Create(ctx context.Context, msg *models.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	return s.pool.QueryRow(ctx,
		`INSERT INTO messages (user_message, ai_response, model, timestamp, response_time)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		msg.UserMessage, msg.AIResponse, msg.Model, msg.Timestamp, msg.ResponseTime,
	).Scan(&msg.ID)
}

// List 按 ID 升序返回全部消息
func (s *PostgresStore) List(ctx context.Context) ([]models.Message, error) {
	return s.query(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY id ASC`)
}

// ListRecent 按时间倒序返回最近 n 条
func (s *PostgresStore) ListRecent(ctx context.Context, n int) ([]models.Message, error) {
	return s.query(ctx, `SELECT `+messageColumns+` FROM messages ORDER BY timestamp DESC, id DESC LIMIT $1`, n)
}

// ListByModel 返回指定模型的消息
func (s *PostgresStore) ListByModel(ctx context.Context, model string) ([]models.Message, error) {
	return s.query(ctx, `SELECT `+messageColumns+` FROM messages WHERE model = $1 ORDER BY id ASC`, model)
}

// ListSince 返回 since 之后写入的消息
func (s *PostgresStore) ListSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	return s.query(ctx, `SELECT `+messageColumns+` FROM messages WHERE timestamp > $1 ORDER BY id ASC`, since)
}

// DeleteAll 删除全部消息
func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM messages`)
	return err
}

// Close 关闭连接池
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanMessage)
}

func scanMessage(row pgx.CollectableRow) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.UserMessage, &m.AIResponse, &m.Model, &m.Timestamp, &m.ResponseTime)
	return m, err
}
