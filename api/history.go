package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatgate/models"
	"chatgate/service"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 历史记录处理器
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler 创建历史记录处理器
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List 获取历史记录
// @Summary 获取历史记录
// @Description 默认按写入顺序返回全部记录；可按模型或起始时间过滤（二选一，model 优先）
// @Tags 历史记录
// @Produce json
// @Param model query string false "模型名称"
// @Param since query string false "起始时间（RFC3339），只返回此后的记录"
// @Success 200 {array} models.Message "历史记录"
// @Failure 400 {object} Response "参数错误"
// @Failure 500 {object} Response "查询失败"
// @Router /api/history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		list []models.Message
		err  error
	)
	switch {
	case strings.TrimSpace(c.Query("model")) != "":
		list, err = h.history.ListByModel(ctx, strings.TrimSpace(c.Query("model")))
	case c.Query("since") != "":
		since, parseErr := time.Parse(time.RFC3339, c.Query("since"))
		if parseErr != nil {
			BadRequest(c, "since 格式错误，应为 RFC3339，如: 2024-01-15T09:00:00Z")
			return
		}
		list, err = h.history.ListSince(ctx, since)
	default:
		list, err = h.history.ListAll(ctx)
	}
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Recent 获取最近的历史记录
// @Summary 获取最近历史记录
// @Description 按时间倒序返回最近10条记录
// @Tags 历史记录
// @Produce json
// @Success 200 {array} models.Message "最近记录"
// @Failure 500 {object} Response "查询失败"
// @Router /api/history/recent [get]
func (h *HistoryHandler) Recent(c *gin.Context) {
	list, err := h.history.ListRecent(c.Request.Context(), h.history.RecentLimit())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(list))
}

// Clear 清空历史记录
// @Summary 清空历史记录
// @Description 删除全部历史记录，可重复调用
// @Tags 历史记录
// @Produce plain
// @Success 200 {string} string "历史记录已清空"
// @Failure 500 {object} Response "删除失败"
// @Router /api/history [delete]
func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.history.ClearAll(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	c.String(http.StatusOK, "历史记录已清空")
}

// Export 导出历史记录为 Excel
// @Summary 导出历史记录
// @Description 将全部历史记录导出为 xlsx 文件
// @Tags 历史记录
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Excel 文件"
// @Failure 500 {object} Response "导出失败"
// @Router /api/history/export [get]
func (h *HistoryHandler) Export(c *gin.Context) {
	buf, err := h.history.Export(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	filename := fmt.Sprintf("chat_history_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// nonNil 空结果返回 [] 而不是 null
func nonNil(list []models.Message) []models.Message {
	if list == nil {
		return []models.Message{}
	}
	return list
}
