package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatgate/config"
	"chatgate/models"
)

// MessageStore 问答记录的持久化接口
type MessageStore interface {
	Create(ctx context.Context, msg *models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	ListRecent(ctx context.Context, n int) ([]models.Message, error)
	ListByModel(ctx context.Context, model string) ([]models.Message, error)
	ListSince(ctx context.Context, since time.Time) ([]models.Message, error)
	DeleteAll(ctx context.Context) error
}

// ChatService 聊天编排：组装提示词、调用推理服务、计时、保存记录
type ChatService struct {
	client      InferenceClient
	store       MessageStore
	defaults    GenerationOptions
	timeout     time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewChatService 创建聊天服务
func NewChatService(client InferenceClient, store MessageStore, cfg config.InferenceConfig) *ChatService {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 2 * time.Minute
	}
	if cfg.StreamIdleTimeout <= 0 {
		cfg.StreamIdleTimeout = time.Minute
	}
	return &ChatService{
		client: client,
		store:  store,
		defaults: GenerationOptions{
			Model:       cfg.DefaultModel,
			Temperature: cfg.DefaultTemperature,
		},
		timeout:     cfg.RequestTimeout,
		idleTimeout: cfg.StreamIdleTimeout,
		now:         time.Now,
	}
}

// SimpleChat 使用默认参数完成一次问答，不保存记录
func (s *ChatService) SimpleChat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	slog.InfoContext(ctx, "收到消息", "mode", "simple", "model", s.defaults.Model)
	text, err := s.complete(ctx, message, s.defaults)
	if err != nil {
		slog.WarnContext(ctx, "推理失败", "mode", "simple", "error", err)
		return "", err
	}
	return text, nil
}

// ChatWithHistory 按请求参数完成一次问答并保存记录。
// 推理失败时不写库；写库失败时返回 ErrPersistence，生成的内容随之丢弃。
func (s *ChatService) ChatWithHistory(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}

	opts := ResolveOptions(req.Model, req.Temperature, s.defaults)
	slog.InfoContext(ctx, "收到消息", "mode", "history", "model", opts.Model, "temperature", opts.Temperature)

	start := s.now()
	text, err := s.complete(ctx, req.Message, opts)
	if err != nil {
		slog.WarnContext(ctx, "推理失败", "mode", "history", "model", opts.Model, "error", err)
		return nil, err
	}
	finished := s.now()
	elapsed := finished.Sub(start).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}

	msg := &models.Message{
		UserMessage:  req.Message,
		AIResponse:   text,
		Model:        opts.Model,
		Timestamp:    finished,
		ResponseTime: elapsed,
	}
	if err := s.store.Create(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "保存消息失败", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	slog.InfoContext(ctx, "消息已保存", "message_id", msg.ID, "response_time_ms", elapsed)

	return &models.ChatResponse{
		Response:     msg.AIResponse,
		Model:        msg.Model,
		Timestamp:    msg.Timestamp,
		ResponseTime: msg.ResponseTime,
		MessageID:    msg.ID,
	}, nil
}

// StreamChat 使用默认参数打开流式问答，不保存记录。
// 调用方负责 Close；ctx 取消后底层请求随之中止。
func (s *ChatService) StreamChat(ctx context.Context, message string) (FragmentStream, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	slog.InfoContext(ctx, "开始流式输出", "model", s.defaults.Model)
	stream, err := openIdleStream(ctx, s.idleTimeout, func(ctx context.Context) (FragmentStream, error) {
		stream, err := s.client.Stream(ctx, message, s.defaults)
		if err != nil {
			return nil, classifyBackendErr(ctx, err)
		}
		return stream, nil
	})
	if err != nil {
		slog.WarnContext(ctx, "打开流失败", "error", err)
		return nil, err
	}
	return stream, nil
}

func (s *ChatService) complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Complete(callCtx, prompt, opts)
	if err != nil {
		return "", classifyBackendErr(callCtx, err)
	}
	return text, nil
}
