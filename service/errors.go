package service

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// 错误类别，具体错误通过 %w 包装这些哨兵错误，调用方用 errors.Is 判断
var (
	ErrValidation         = errors.New("invalid request")
	ErrBackendUnavailable = errors.New("inference backend unavailable")
	ErrBackend            = errors.New("inference backend error")
	ErrTimeout            = errors.New("inference timeout")
	ErrPersistence        = errors.New("persistence error")
)

// ErrEmptyMessage 消息为空
var ErrEmptyMessage = fmt.Errorf("%w: message must not be empty", ErrValidation)

// classifyBackendErr 将调用推理服务时的底层错误归类
// ctx 为发起调用时使用的上下文，用于区分超时与调用方主动取消
func classifyBackendErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrBackendUnavailable) ||
		errors.Is(err, ErrBackend) || errors.Is(err, ErrTimeout) {
		return err
	}
	if cause := context.Cause(ctx); cause != nil {
		if errors.Is(cause, ErrTimeout) || errors.Is(cause, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		if errors.Is(cause, context.Canceled) {
			return context.Canceled
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrBackend, err)
}
