package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxCompletionBytes 非流式响应体上限
const maxCompletionBytes = 16 << 20

// OllamaClient 调用 Ollama 原生接口 /api/chat
type OllamaClient struct {
	baseURL    string
	httpClient *http.Client
	maxBody    int64
}

// NewOllamaClient 创建 Ollama 客户端
// 超时由调用方的 ctx 控制，http.Client 本身不设超时，避免截断长时间的流式输出
func NewOllamaClient(baseURL string) *OllamaClient {
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		maxBody:    maxCompletionBytes,
	}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

// ollamaChatChunk 非流式响应与流式响应的每一行共用此结构
type ollamaChatChunk struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Complete 阻塞调用，返回完整回复
func (c *OllamaClient) Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error) {
	resp, err := c.post(ctx, prompt, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return "", classifyBackendErr(ctx, err)
	}
	if int64(len(body)) > c.maxBody {
		return "", fmt.Errorf("%w: 响应超过 %d 字节", ErrBackend, c.maxBody)
	}

	var chunk ollamaChatChunk
	if err := json.Unmarshal(body, &chunk); err != nil {
		return "", fmt.Errorf("%w: 解析响应失败: %v", ErrBackend, err)
	}
	if chunk.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrBackend, chunk.Error)
	}
	return chunk.Message.Content, nil
}

// Stream 流式调用，响应体为 NDJSON，每行一个片段，最后一行 done=true
func (c *OllamaClient) Stream(ctx context.Context, prompt string, opts GenerationOptions) (FragmentStream, error) {
	resp, err := c.post(ctx, prompt, opts, true)
	if err != nil {
		return nil, err
	}
	return &ollamaStream{
		ctx:    ctx,
		body:   resp.Body,
		reader: bufio.NewReader(resp.Body),
	}, nil
}

func (c *OllamaClient) post(ctx context.Context, prompt string, opts GenerationOptions, stream bool) (*http.Response, error) {
	requestBody := ollamaChatRequest{
		Model:    opts.Model,
		Messages: []ollamaMessage{{Role: "user", Content: prompt}},
		Stream:   stream,
		Options:  ollamaOptions{Temperature: opts.Temperature},
	}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if stream {
		req.Header.Set("Accept", "application/x-ndjson")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyBackendErr(ctx, err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var chunk ollamaChatChunk
		if json.Unmarshal(body, &chunk) == nil && chunk.Error != "" {
			return nil, fmt.Errorf("%w: %d %s", ErrBackend, resp.StatusCode, chunk.Error)
		}
		return nil, fmt.Errorf("%w: %d %s", ErrBackend, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

type ollamaStream struct {
	ctx     context.Context
	body    io.ReadCloser
	reader  *bufio.Reader
	current string
	done    bool
	err     error
	closed  bool
}

func (s *ollamaStream) Next() bool {
	for {
		if s.done || s.err != nil {
			return false
		}

		line, readErr := s.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			var chunk ollamaChatChunk
			if err := json.Unmarshal(line, &chunk); err != nil {
				s.err = fmt.Errorf("%w: 解析流式片段失败: %v", ErrBackend, err)
				return false
			}
			if chunk.Error != "" {
				s.err = fmt.Errorf("%w: %s", ErrBackend, chunk.Error)
				return false
			}
			if chunk.Done {
				s.done = true
			}
			if chunk.Message.Content != "" {
				s.current = chunk.Message.Content
				return true
			}
			continue
		}

		if readErr != nil {
			if readErr == io.EOF {
				// 没有收到 done 就结束，视为被截断
				s.err = fmt.Errorf("%w: 流在完成前中断", ErrBackend)
			} else {
				s.err = classifyBackendErr(s.ctx, readErr)
			}
			return false
		}
	}
}

func (s *ollamaStream) Fragment() string {
	return s.current
}

func (s *ollamaStream) Err() error {
	return s.err
}

func (s *ollamaStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
