package models

import "time"

// ChatRequest 聊天请求
type ChatRequest struct {
	Message     string   `json:"message" binding:"required" example:"Bonjour"`
	Model       string   `json:"model,omitempty" example:"llama3.2"`
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// ChatResponse 聊天响应，对应一条已保存的 Message
type ChatResponse struct {
	Response     string    `json:"response"`
	Model        string    `json:"model"`
	Timestamp    time.Time `json:"timestamp"`
	ResponseTime int64     `json:"responseTime"`
	MessageID    int64     `json:"messageId"`
}
