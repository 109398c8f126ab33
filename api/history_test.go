package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"chatgate/database"
	"chatgate/models"
	"chatgate/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newHistoryRouter(store service.MessageStore) *gin.Engine {
	h := NewHistoryHandler(service.NewHistoryService(store, 10))
	router := gin.New()
	router.GET("/api/history", h.List)
	router.GET("/api/history/recent", h.Recent)
	router.GET("/api/history/export", h.Export)
	router.DELETE("/api/history", h.Clear)
	return router
}

func seedStore(t *testing.T, store *database.MemoryStore, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		model := "llama2"
		if i%2 == 1 {
			model = "mistral"
		}
		require.NoError(t, store.Create(context.Background(), &models.Message{
			UserMessage: "q",
			AIResponse:  "a",
			Model:       model,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}))
	}
}

func decodeMessages(t *testing.T, w *httptest.ResponseRecorder) []models.Message {
	t.Helper()
	var list []models.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	return list
}

func TestHistoryHandler_ListEmpty(t *testing.T) {
	router := newHistoryRouter(database.NewMemoryStore())

	req := httptest.NewRequest("GET", "/api/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHistoryHandler_Recent(t *testing.T) {
	store := database.NewMemoryStore()
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	seedStore(t, store, 12, base)
	router := newHistoryRouter(store)

	req := httptest.NewRequest("GET", "/api/history/recent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	list := decodeMessages(t, w)
	require.Len(t, list, 10)
	assert.Equal(t, int64(12), list[0].ID)
	assert.Equal(t, int64(3), list[9].ID)
}

func TestHistoryHandler_Filters(t *testing.T) {
	store := database.NewMemoryStore()
	base := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	seedStore(t, store, 4, base)
	router := newHistoryRouter(store)

	req := httptest.NewRequest("GET", "/api/history?model=mistral", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	list := decodeMessages(t, w)
	require.Len(t, list, 2)
	for _, m := range list {
		assert.Equal(t, "mistral", m.Model)
	}

	req = httptest.NewRequest("GET", "/api/history?since=2024-01-15T09:01:00Z", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	list = decodeMessages(t, w)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ID)

	req = httptest.NewRequest("GET", "/api/history?since=yesterday", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 400, w.Code)
}

func TestHistoryHandler_ClearTwice(t *testing.T) {
	store := database.NewMemoryStore()
	seedStore(t, store, 3, time.Now())
	router := newHistoryRouter(store)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("DELETE", "/api/history", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, 200, w.Code)
		assert.Equal(t, "历史记录已清空", w.Body.String())
	}

	req := httptest.NewRequest("GET", "/api/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestHistoryHandler_Export(t *testing.T) {
	store := database.NewMemoryStore()
	seedStore(t, store, 2, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC))
	router := newHistoryRouter(store)

	req := httptest.NewRequest("GET", "/api/history/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("历史记录")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
