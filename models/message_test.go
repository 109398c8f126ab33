package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_TableName(t *testing.T) {
	assert.Equal(t, "messages", Message{}.TableName())
}

func TestMessage_BeforeCreate(t *testing.T) {
	m := &Message{UserMessage: "Bonjour"}
	require.NoError(t, m.BeforeCreate(nil))
	assert.False(t, m.Timestamp.IsZero())

	// 已设置的时间不覆盖
	fixed := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	m2 := &Message{Timestamp: fixed}
	require.NoError(t, m2.BeforeCreate(nil))
	assert.Equal(t, fixed, m2.Timestamp)
}

func TestMessage_JSONFieldNames(t *testing.T) {
	b, err := json.Marshal(Message{ID: 1, UserMessage: "Bonjour", AIResponse: "Hello", Model: "llama2", ResponseTime: 12})
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	for _, key := range []string{"id", "userMessage", "aiResponse", "model", "timestamp", "responseTime"} {
		assert.Contains(t, out, key)
	}
}

func TestChatRequest_OptionalFields(t *testing.T) {
	var req ChatRequest
	require.NoError(t, json.Unmarshal([]byte(`{"message":"Bonjour"}`), &req))
	assert.Equal(t, "Bonjour", req.Message)
	assert.Empty(t, req.Model)
	assert.Nil(t, req.Temperature)

	require.NoError(t, json.Unmarshal([]byte(`{"message":"Hi","model":"test-model","temperature":0}`), &req))
	require.NotNil(t, req.Temperature)
	assert.Equal(t, 0.0, *req.Temperature)
}
