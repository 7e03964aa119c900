package dataapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/pkg/store/filestore"
)

func newTestRouter() (*gin.Engine, *filestore.MemStore) {
	gin.SetMode(gin.TestMode)
	st := filestore.NewMemStore()
	r := gin.New()
	setupRoutes(r, NewHandler(st, nil, nil))
	return r, st
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r, _ := newTestRouter()
	w := do(r, http.MethodHead, "/api/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDataRoundTrip(t *testing.T) {
	r, _ := newTestRouter()

	t.Run("写入", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/data/orders", `{"data":[{"orderId":"o1","status":"waiting"}]}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"message":"数据已保存"}`, w.Body.String())
	})

	t.Run("读取返回写入的内容", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/data/orders", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"data":[{"orderId":"o1","status":"waiting"}]}`, w.Body.String())
	})

	t.Run("keys 包含集合", func(t *testing.T) {
		w := do(r, http.MethodGet, "/api/keys", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"keys":["orders"]}`, w.Body.String())
	})
}

func TestDataMissingIsNull(t *testing.T) {
	r, _ := newTestRouter()

	w := do(r, http.MethodGet, "/api/data/ghost", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, w.Body.String())
}

func TestDataDeleteIdempotent(t *testing.T) {
	r, _ := newTestRouter()

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/data/services", `{"data":[]}`).Code)

	first := do(r, http.MethodDelete, "/api/data/services", "")
	assert.Equal(t, http.StatusOK, first.Code)
	second := do(r, http.MethodDelete, "/api/data/services", "")
	assert.Equal(t, http.StatusOK, second.Code)

	w := do(r, http.MethodGet, "/api/data/services", "")
	assert.JSONEq(t, `{"success":true,"data":null}`, w.Body.String())
}

func TestDataSaveValidation(t *testing.T) {
	r, _ := newTestRouter()

	t.Run("缺 data 字段", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/data/orders", `{"value":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("非 JSON 请求体", func(t *testing.T) {
		w := do(r, http.MethodPost, "/api/data/orders", `not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
