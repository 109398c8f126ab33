package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"
)

// OpenAIClient 调用 OpenAI 兼容接口（Ollama 在 /v1 下提供兼容接口）
type OpenAIClient struct {
	client openai.Client
}

// NewOpenAIClient 创建 OpenAI 兼容客户端
// Ollama 不校验密钥，未配置时使用占位值
func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	if strings.TrimSpace(apiKey) == "" {
		apiKey = "ollama"
	}
	client := openai.NewClient(
		option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"),
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{}),
		option.WithMaxRetries(0),
	)
	return &OpenAIClient{client: client}
}

func buildChatParams(prompt string, opts GenerationOptions) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
}

// Complete 阻塞调用，返回完整回复
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, buildChatParams(prompt, opts))
	if err != nil {
		return "", classifyOpenAIErr(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: 响应中没有 choices", ErrBackend)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream 流式调用
func (c *OpenAIClient) Stream(ctx context.Context, prompt string, opts GenerationOptions) (FragmentStream, error) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, buildChatParams(prompt, opts))
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, classifyOpenAIErr(ctx, err)
	}
	return &openAIStream{ctx: ctx, stream: stream}, nil
}

func classifyOpenAIErr(ctx context.Context, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %d %s", ErrBackend, apiErr.StatusCode, apiErr.Message)
	}
	return classifyBackendErr(ctx, err)
}

type openAIStream struct {
	ctx      context.Context
	stream   *ssestream.Stream[openai.ChatCompletionChunk]
	current  string
	finished bool
	err      error
	closed   bool
}

func (s *openAIStream) Next() bool {
	if s.err != nil {
		return false
	}
	for s.stream.Next() {
		chunk := s.stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		if choice.FinishReason != "" {
			s.finished = true
		}
		if choice.Delta.Content != "" {
			s.current = choice.Delta.Content
			return true
		}
	}
	if err := s.stream.Err(); err != nil {
		s.err = classifyOpenAIErr(s.ctx, err)
		return false
	}
	if !s.finished {
		s.err = fmt.Errorf("%w: 流在完成前中断", ErrBackend)
	}
	return false
}

func (s *openAIStream) Fragment() string {
	return s.current
}

func (s *openAIStream) Err() error {
	return s.err
}

func (s *openAIStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}
