package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"chatgate/models"

	"github.com/xuri/excelize/v2"
)

// HistoryService 历史记录查询与清理，直接委托给存储层
type HistoryService struct {
	store       MessageStore
	recentLimit int
}

// NewHistoryService 创建历史记录服务
func NewHistoryService(store MessageStore, recentLimit int) *HistoryService {
	if recentLimit <= 0 {
		recentLimit = 10
	}
	return &HistoryService{store: store, recentLimit: recentLimit}
}

// RecentLimit 默认的最近记录条数
func (s *HistoryService) RecentLimit() int {
	return s.recentLimit
}

// ListAll 按写入顺序返回全部记录
func (s *HistoryService) ListAll(ctx context.Context) ([]models.Message, error) {
	slog.DebugContext(ctx, "获取全部历史记录")
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return list, nil
}

// ListRecent 按时间倒序返回最近 n 条，n <= 0 时使用默认条数
func (s *HistoryService) ListRecent(ctx context.Context, n int) ([]models.Message, error) {
	if n <= 0 {
		n = s.recentLimit
	}
	list, err := s.store.ListRecent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return list, nil
}

// ListByModel 返回指定模型生成的记录
func (s *HistoryService) ListByModel(ctx context.Context, model string) ([]models.Message, error) {
	list, err := s.store.ListByModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return list, nil
}

// ListSince 返回 since 之后（不含）写入的记录
func (s *HistoryService) ListSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	list, err := s.store.ListSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return list, nil
}

// ClearAll 清空全部记录，空表上调用同样成功
func (s *HistoryService) ClearAll(ctx context.Context) error {
	slog.WarnContext(ctx, "清空历史记录")
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Export 将全部记录导出为 Excel 工作簿
func (s *HistoryService) Export(ctx context.Context) (*bytes.Buffer, error) {
	list, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildHistoryWorkbook(list)
}

func buildHistoryWorkbook(list []models.Message) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "历史记录"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("创建工作表失败: %w", err)
	}

	headers := []interface{}{"ID", "用户消息", "AI回复", "模型", "时间", "耗时(ms)"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "F1", headerStyle)
	}

	for i, m := range list {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			m.ID,
			m.UserMessage,
			m.AIResponse,
			m.Model,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.ResponseTime,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("写入数据失败: %w", err)
		}
	}

	_ = f.SetColWidth(sheet, "B", "C", 60)
	_ = f.SetColWidth(sheet, "D", "E", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("生成 Excel 失败: %w", err)
	}
	return buf, nil
}
