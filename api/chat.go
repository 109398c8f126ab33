package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chatgate/models"
	"chatgate/service"

	"github.com/gin-gonic/gin"
)

type sseChatFrame struct {
	Type    string `json:"type"`              // delta | done | error
	Content string `json:"content,omitempty"` // delta内容或错误信息
}

func writeSSEJSON(c *gin.Context, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = c.Writer.WriteString("data: " + string(b) + "\n\n")
	c.Writer.Flush()
}

// ChatHandler 聊天处理器
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// SimpleChat 简单聊天，使用默认参数且不保存记录
// @Summary 简单聊天
// @Description 使用默认模型和温度回答一条消息，直接返回文本，不保存历史
// @Tags 聊天
// @Produce plain
// @Param message query string true "用户消息"
// @Success 200 {string} string "AI回复"
// @Failure 400 {object} Response "参数错误"
// @Failure 502 {object} Response "AI服务不可用或返回错误"
// @Failure 504 {object} Response "AI服务响应超时"
// @Router /api/chat [get]
func (h *ChatHandler) SimpleChat(c *gin.Context) {
	text, err := h.chat.SimpleChat(c.Request.Context(), c.Query("message"))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.String(http.StatusOK, text)
}

// Chat 带参数的聊天，结果保存到历史记录
// @Summary 聊天（保存历史）
// @Description 可选指定模型和温度，回答后保存一条历史记录并返回记录ID与耗时
// @Tags 聊天
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "聊天请求"
// @Success 200 {object} models.ChatResponse "聊天结果"
// @Failure 400 {object} Response "参数错误"
// @Failure 500 {object} Response "保存记录失败"
// @Failure 502 {object} Response "AI服务不可用或返回错误"
// @Failure 504 {object} Response "AI服务响应超时"
// @Router /api/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	resp, err := h.chat.ChatWithHistory(c.Request.Context(), req)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ChatStream 流式聊天（SSE），每个片段一帧，不保存记录
// @Summary 聊天（流式）
// @Description 使用默认模型流式回答，SSE返回JSON帧（delta/done/error）。中途出错时先发送error帧再发送done帧。
// @Tags 聊天
// @Produce text/event-stream
// @Param message query string true "用户消息"
// @Success 200 {string} string "SSE流：data: {\"type\":\"delta\",\"content\":\"...\"}"
// @Failure 400 {object} Response "参数错误"
// @Failure 502 {object} Response "AI服务不可用或返回错误"
// @Router /api/chat/stream [get]
func (h *ChatHandler) ChatStream(c *gin.Context) {
	ctx := c.Request.Context()
	stream, err := h.chat.StreamChat(ctx, c.Query("message"))
	if err != nil {
		RespondError(c, err)
		return
	}
	defer stream.Close()

	// SSE响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fragments := 0
	for stream.Next() {
		fragments++
		writeSSEJSON(c, sseChatFrame{Type: "delta", Content: stream.Fragment()})
	}

	if err := stream.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			// 客户端断开，无需再写
			slog.InfoContext(ctx, "客户端断开，停止流式输出", "fragments", fragments)
			return
		}
		_, fallback := statusFor(err)
		slog.WarnContext(ctx, "流式输出中断", "fragments", fragments, "error", err)
		writeSSEJSON(c, sseChatFrame{Type: "error", Content: SafeErrorMessage(err, fallback)})
	}
	writeSSEJSON(c, sseChatFrame{Type: "done"})
}
