package models

import (
	"time"

	"gorm.io/gorm"
)

// Message 一次问答记录（单轮：用户输入 + AI输出）
// 推理成功后一次性写入，写入后不再修改，只能整体清空
type Message struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserMessage  string    `json:"userMessage" gorm:"type:text;not null"`
	AIResponse   string    `json:"aiResponse" gorm:"type:text"`
	Model        string    `json:"model" gorm:"size:50;index"`
	Timestamp    time.Time `json:"timestamp" gorm:"not null;index"`
	ResponseTime int64     `json:"responseTime"` // 推理耗时（毫秒）
}

// TableName 设置表名
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate 未设置时间时以写入时刻为准
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return nil
}
