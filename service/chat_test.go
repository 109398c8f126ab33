package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"chatgate/config"
	"chatgate/database"
	"chatgate/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient 可控的推理服务替身，Complete 与 Stream 输出一致
type stubClient struct {
	mu        sync.Mutex
	fragments []string
	err       error // Complete 与打开流时返回
	midErr    error // 输出完片段后返回
	hang      bool  // 输出完片段后阻塞直到 ctx 结束
	delay     time.Duration
	calls     []GenerationOptions
	prompts   []string
}

func (c *stubClient) record(prompt string, opts GenerationOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, opts)
	c.prompts = append(c.prompts, prompt)
}

func (c *stubClient) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	c.record(prompt, opts)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if c.err != nil {
		return "", c.err
	}
	return strings.Join(c.fragments, ""), nil
}

func (c *stubClient) Stream(ctx context.Context, prompt string, opts GenerationOptions) (FragmentStream, error) {
	c.record(prompt, opts)
	if c.err != nil {
		return nil, c.err
	}
	return &stubStream{ctx: ctx, fragments: c.fragments, midErr: c.midErr, hang: c.hang}, nil
}

type stubStream struct {
	ctx       context.Context
	fragments []string
	pos       int
	current   string
	midErr    error
	hang      bool
	err       error
	closed    bool
}

func (s *stubStream) Next() bool {
	if s.err != nil || s.closed {
		return false
	}
	if s.pos < len(s.fragments) {
		s.current = s.fragments[s.pos]
		s.pos++
		return true
	}
	if s.midErr != nil {
		s.err = s.midErr
		return false
	}
	if s.hang {
		<-s.ctx.Done()
		s.err = s.ctx.Err()
	}
	return false
}

func (s *stubStream) Fragment() string { return s.current }
func (s *stubStream) Err() error       { return s.err }
func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

// failingStore 写入或查询总是失败
type failingStore struct {
	*database.MemoryStore
}

func (failingStore) Create(context.Context, *models.Message) error {
	return errors.New("connection lost")
}

func testInferenceConfig() config.InferenceConfig {
	return config.InferenceConfig{
		DefaultModel:       "llama2",
		DefaultTemperature: 0.7,
		RequestTimeout:     time.Second,
		StreamIdleTimeout:  time.Second,
	}
}

func drain(t *testing.T, s FragmentStream) ([]string, error) {
	t.Helper()
	defer s.Close()
	var got []string
	for s.Next() {
		got = append(got, s.Fragment())
	}
	return got, s.Err()
}

func TestChatService_SimpleChat(t *testing.T) {
	client := &stubClient{fragments: []string{"Hello"}}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())

	text, err := svc.SimpleChat(context.Background(), "Bonjour")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	// 使用默认参数，不写库
	require.Len(t, client.calls, 1)
	assert.Equal(t, GenerationOptions{Model: "llama2", Temperature: 0.7}, client.calls[0])
	assert.Equal(t, "Bonjour", client.prompts[0])
	list, _ := store.List(context.Background())
	assert.Empty(t, list)
}

func TestChatService_SimpleChat_EmptyMessage(t *testing.T) {
	client := &stubClient{fragments: []string{"Hello"}}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	_, err := svc.SimpleChat(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, client.calls)
}

func TestChatService_SimpleChat_BackendError(t *testing.T) {
	client := &stubClient{err: errors.New("model not found")}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	_, err := svc.SimpleChat(context.Background(), "Bonjour")
	assert.ErrorIs(t, err, ErrBackend)
}

func TestChatService_ChatWithHistory(t *testing.T) {
	client := &stubClient{fragments: []string{"Hello"}}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())

	temp := 0.2
	resp, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{
		Message:     "Bonjour",
		Model:       "test-model",
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", resp.Response)
	assert.Equal(t, "test-model", resp.Model)
	assert.GreaterOrEqual(t, resp.ResponseTime, int64(0))
	assert.NotZero(t, resp.MessageID)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Equal(t, GenerationOptions{Model: "test-model", Temperature: 0.2}, client.calls[0])

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, resp.MessageID, list[0].ID)
	assert.Equal(t, "Bonjour", list[0].UserMessage)
	assert.Equal(t, "Hello", list[0].AIResponse)
	assert.Equal(t, "test-model", list[0].Model)
	assert.Equal(t, resp.ResponseTime, list[0].ResponseTime)
	assert.True(t, resp.Timestamp.Equal(list[0].Timestamp))
}

func TestChatService_ChatWithHistory_DefaultsAndTiming(t *testing.T) {
	client := &stubClient{fragments: []string{"Hi"}}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())

	// 固定时钟：推理前 t0，推理后 t0+250ms
	t0 := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	ticks := []time.Time{t0, t0.Add(250 * time.Millisecond)}
	svc.now = func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}

	resp, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{Message: "Bonjour"})
	require.NoError(t, err)

	assert.Equal(t, "llama2", resp.Model)
	assert.Equal(t, int64(250), resp.ResponseTime)
	assert.Equal(t, t0.Add(250*time.Millisecond), resp.Timestamp)
	assert.Equal(t, GenerationOptions{Model: "llama2", Temperature: 0.7}, client.calls[0])
}

func TestChatService_ChatWithHistory_BackendFailureDoesNotPersist(t *testing.T) {
	client := &stubClient{err: errors.New("boom")}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())
	history := NewHistoryService(store, 10)

	resp, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{Message: "Bonjour"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrBackend)

	list, err := history.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestChatService_ChatWithHistory_Timeout(t *testing.T) {
	client := &stubClient{fragments: []string{"late"}, delay: time.Second}
	store := database.NewMemoryStore()
	cfg := testInferenceConfig()
	cfg.RequestTimeout = 20 * time.Millisecond
	svc := NewChatService(client, store, cfg)

	_, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{Message: "Bonjour"})
	assert.ErrorIs(t, err, ErrTimeout)

	list, _ := store.List(context.Background())
	assert.Empty(t, list)
}

func TestChatService_ChatWithHistory_PersistenceError(t *testing.T) {
	client := &stubClient{fragments: []string{"Hello"}}
	svc := NewChatService(client, failingStore{database.NewMemoryStore()}, testInferenceConfig())

	resp, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{Message: "Bonjour"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrPersistence)
	// 推理已经完成
	assert.Len(t, client.calls, 1)
}

func TestChatService_ChatWithHistory_EmptyMessage(t *testing.T) {
	client := &stubClient{fragments: []string{"Hello"}}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())

	_, err := svc.ChatWithHistory(context.Background(), models.ChatRequest{Message: ""})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, client.calls)
	list, _ := store.List(context.Background())
	assert.Empty(t, list)
}

func TestChatService_StreamChat(t *testing.T) {
	client := &stubClient{fragments: []string{"He", "llo"}}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	stream, err := svc.StreamChat(context.Background(), "Hi")
	require.NoError(t, err)

	got, err := drain(t, stream)
	require.NoError(t, err)
	assert.Equal(t, []string{"He", "llo"}, got)

	// 流式与阻塞调用输出一致
	text, err := svc.SimpleChat(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, text, strings.Join(got, ""))
}

func TestChatService_StreamChat_IgnoresOverridesAndDoesNotPersist(t *testing.T) {
	client := &stubClient{fragments: []string{"ok"}}
	store := database.NewMemoryStore()
	svc := NewChatService(client, store, testInferenceConfig())

	stream, err := svc.StreamChat(context.Background(), "Hi")
	require.NoError(t, err)
	_, err = drain(t, stream)
	require.NoError(t, err)

	assert.Equal(t, GenerationOptions{Model: "llama2", Temperature: 0.7}, client.calls[0])
	list, _ := store.List(context.Background())
	assert.Empty(t, list)
}

func TestChatService_StreamChat_OpenError(t *testing.T) {
	client := &stubClient{err: &testBackendErr{}}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	stream, err := svc.StreamChat(context.Background(), "Hi")
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, ErrBackend)
}

func TestChatService_StreamChat_MidStreamError(t *testing.T) {
	client := &stubClient{fragments: []string{"He"}, midErr: errors.New("connection reset")}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	stream, err := svc.StreamChat(context.Background(), "Hi")
	require.NoError(t, err)

	got, err := drain(t, stream)
	// 已输出的片段保留，随后以错误结束
	assert.Equal(t, []string{"He"}, got)
	assert.ErrorIs(t, err, ErrBackend)
}

func TestChatService_StreamChat_IdleTimeout(t *testing.T) {
	client := &stubClient{fragments: []string{"He"}, hang: true}
	cfg := testInferenceConfig()
	cfg.StreamIdleTimeout = 30 * time.Millisecond
	svc := NewChatService(client, database.NewMemoryStore(), cfg)

	stream, err := svc.StreamChat(context.Background(), "Hi")
	require.NoError(t, err)

	got, err := drain(t, stream)
	assert.Equal(t, []string{"He"}, got)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestChatService_StreamChat_SlowConsumerIsNotIdle(t *testing.T) {
	client := &stubClient{fragments: []string{"a", "b", "c"}}
	cfg := testInferenceConfig()
	cfg.StreamIdleTimeout = 30 * time.Millisecond
	svc := NewChatService(client, database.NewMemoryStore(), cfg)

	stream, err := svc.StreamChat(context.Background(), "Hi")
	require.NoError(t, err)
	defer stream.Close()

	// 调用方处理每个片段的时间超过空闲超时，不应判定为后端超时
	time.Sleep(60 * time.Millisecond)
	var got []string
	for stream.Next() {
		got = append(got, stream.Fragment())
		time.Sleep(60 * time.Millisecond)
	}
	require.NoError(t, stream.Err())
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestChatService_StreamChat_CallerCancel(t *testing.T) {
	client := &stubClient{fragments: []string{"He"}, hang: true}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := svc.StreamChat(ctx, "Hi")
	require.NoError(t, err)

	require.True(t, stream.Next())
	cancel()
	assert.False(t, stream.Next())
	assert.ErrorIs(t, stream.Err(), context.Canceled)
	require.NoError(t, stream.Close())
}

func TestChatService_StreamChat_EmptyMessage(t *testing.T) {
	client := &stubClient{fragments: []string{"He"}}
	svc := NewChatService(client, database.NewMemoryStore(), testInferenceConfig())

	_, err := svc.StreamChat(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, client.calls)
}

type testBackendErr struct{}

func (*testBackendErr) Error() string { return "backend said no" }
