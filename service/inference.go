package service

import (
	"context"
	"fmt"

	"chatgate/config"
)

// InferenceClient 推理服务客户端
// Complete 阻塞返回完整结果；Stream 返回按生成顺序逐段产出的文本流
type InferenceClient interface {
	Complete(ctx context.Context, prompt string, opts GenerationOptions) (string, error)
	Stream(ctx context.Context, prompt string, opts GenerationOptions) (FragmentStream, error)
}

// FragmentStream 单次流式推理的文本片段序列，只能向前消费一次。
//
//	for s.Next() { use(s.Fragment()) }
//	if err := s.Err(); err != nil { ... }
//
// 推理服务未发出完成信号就中断时 Err 返回错误，不会静默截断。
// Close 释放底层连接，可以在任意时刻调用，重复调用无副作用。
type FragmentStream interface {
	Next() bool
	Fragment() string
	Err() error
	Close() error
}

// NewInferenceClient 根据配置创建推理服务客户端
func NewInferenceClient(cfg config.InferenceConfig) (InferenceClient, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaClient(cfg.BaseURL), nil
	case "openai":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("不支持的推理服务类型: %q", cfg.Provider)
	}
}
