package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"chatgate/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"参数错误", service.ErrEmptyMessage, 400},
		{"后端不可用", fmt.Errorf("%w: dial tcp", service.ErrBackendUnavailable), 502},
		{"后端错误", fmt.Errorf("%w: 500", service.ErrBackend), 502},
		{"超时", service.ErrTimeout, 504},
		{"存储失败", fmt.Errorf("%w: disk full", service.ErrPersistence), 500},
		{"未知错误", errors.New("unexpected"), 500},
		{"已取消", context.Canceled, 499},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			RespondError(c, tt.err)

			assert.Equal(t, tt.code, w.Code)
			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.err.Error(), resp.Message)
		})
	}
}
