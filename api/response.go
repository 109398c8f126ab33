package api

import (
	"context"
	"errors"
	"net/http"

	"chatgate/config"
	"chatgate/service"

	"github.com/gin-gonic/gin"
)

// Response 错误响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// InternalError 500 错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// statusFor 错误类别到 HTTP 状态码：参数错误 400，推理服务故障 502，超时 504，存储故障 500
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "参数错误"
	case errors.Is(err, service.ErrTimeout):
		return http.StatusGatewayTimeout, "AI服务响应超时"
	case errors.Is(err, service.ErrBackendUnavailable):
		return http.StatusBadGateway, "AI服务不可用"
	case errors.Is(err, service.ErrBackend):
		return http.StatusBadGateway, "AI服务返回错误"
	case errors.Is(err, service.ErrPersistence):
		return http.StatusInternalServerError, "保存记录失败"
	case errors.Is(err, context.Canceled):
		// 客户端已断开，状态码仅用于日志
		return 499, "请求已取消"
	default:
		return http.StatusInternalServerError, "服务器内部错误"
	}
}

// RespondError 按错误类别返回对应状态码
func RespondError(c *gin.Context, err error) {
	code, fallback := statusFor(err)
	if errors.Is(err, service.ErrValidation) {
		// 参数错误对调用方没有敏感信息
		Error(c, code, err.Error())
		return
	}
	if code == http.StatusInternalServerError {
		InternalError(c, SafeErrorMessage(err, fallback))
		return
	}
	Error(c, code, SafeErrorMessage(err, fallback))
}

// SafeErrorMessage 生产环境下不向客户端暴露内部错误详情
func SafeErrorMessage(err error, fallback string) string {
	return config.SafeErrorMessage(err, fallback)
}
