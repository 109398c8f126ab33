package api

import (
	"context"
	"strings"

	"chatgate/service"
)

// stubClient 测试用推理服务替身
type stubClient struct {
	fragments []string
	err       error // Complete 与打开流时返回
	midErr    error // 输出完片段后返回
	calls     []service.GenerationOptions
}

func (c *stubClient) Complete(ctx context.Context, prompt string, opts service.GenerationOptions) (string, error) {
	c.calls = append(c.calls, opts)
	if c.err != nil {
		return "", c.err
	}
	return strings.Join(c.fragments, ""), nil
}

func (c *stubClient) Stream(ctx context.Context, prompt string, opts service.GenerationOptions) (service.FragmentStream, error) {
	c.calls = append(c.calls, opts)
	if c.err != nil {
		return nil, c.err
	}
	return &stubStream{fragments: c.fragments, midErr: c.midErr}, nil
}

type stubStream struct {
	fragments []string
	pos       int
	current   string
	midErr    error
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
	s.err = s.midErr
	return false
}

func (s *stubStream) Fragment() string { return s.current }
func (s *stubStream) Err() error       { return s.err }
func (s *stubStream) Close() error {
	s.closed = true
	return nil
}
