package service

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// idleStream 为流式调用加上空闲超时：超过 idle 没有新片段就取消底层调用，
// 取消原因记为 ErrTimeout，Err 据此返回超时错误。
// 只在 Next 等待后端时计时，调用方处理片段（如写给客户端）的时间不计入
type idleStream struct {
	FragmentStream
	ctx    context.Context
	cancel context.CancelCauseFunc
	timer  *time.Timer
	idle   time.Duration
}

// openIdleStream 在带空闲计时的 ctx 下打开流，打开阶段（等待响应头）同样计时
func openIdleStream(parent context.Context, idle time.Duration, open func(ctx context.Context) (FragmentStream, error)) (FragmentStream, error) {
	ctx, cancel := context.WithCancelCause(parent)
	timer := time.AfterFunc(idle, func() {
		cancel(fmt.Errorf("%w: %s 内没有收到新的片段", ErrTimeout, idle))
	})

	stream, err := open(ctx)
	if err != nil {
		timer.Stop()
		cancel(nil)
		if errors.Is(context.Cause(ctx), ErrTimeout) {
			return nil, context.Cause(ctx)
		}
		return nil, err
	}

	timer.Stop()

	return &idleStream{
		FragmentStream: stream,
		ctx:            ctx,
		cancel:         cancel,
		timer:          timer,
		idle:           idle,
	}, nil
}

func (s *idleStream) Next() bool {
	s.timer.Reset(s.idle)
	ok := s.FragmentStream.Next()
	s.timer.Stop()
	return ok
}

func (s *idleStream) Err() error {
	err := s.FragmentStream.Err()
	if err == nil {
		return nil
	}
	if cause := context.Cause(s.ctx); errors.Is(cause, ErrTimeout) {
		return cause
	}
	return classifyBackendErr(s.ctx, err)
}

func (s *idleStream) Close() error {
	s.timer.Stop()
	err := s.FragmentStream.Close()
	s.cancel(nil)
	return err
}
