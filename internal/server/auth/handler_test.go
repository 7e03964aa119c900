package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/store/filestore"
)

func newTestRouter(t *testing.T) (*gin.Engine, SessionStore) {
	gin.SetMode(gin.TestMode)

	st := filestore.NewMemStore()
	users := []map[string]interface{}{
		{"id": "u1", "name": "alice", "email": "alice@example.com", "password": "secret", "isAdmin": false, "balance": 10.0},
		{"id": "u2", "name": "admin", "email": "admin@example.com", "password": "admin123", "isAdmin": true, "balance": 0.0},
	}
	raw, err := json.Marshal(users)
	require.NoError(t, err)
	require.NoError(t, st.Write(store.KeyUsers, raw))

	sessions := NewMemorySessionStore()
	r := gin.New()
	setupRoutes(r, NewHandler(sessions, st, 24*time.Hour, nil))
	return r, sessions
}

func post(r *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r, sessions := newTestRouter(t)

	t.Run("按用户名登录", func(t *testing.T) {
		w := post(r, "/api/auth/login", `{"username":"alice","password":"secret"}`, "")
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Token   string                 `json:"token"`
			User    map[string]interface{} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User["name"])
		assert.NotContains(t, resp.User, "password")

		session, err := sessions.Get(context.Background(), resp.Token)
		require.NoError(t, err)
		assert.Equal(t, "u1", session.UserID)
		assert.False(t, session.IsAdmin)
	})

	t.Run("按邮箱登录", func(t *testing.T) {
		w := post(r, "/api/auth/login", `{"username":"admin@example.com","password":"admin123"}`, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("密码错误返回 401", func(t *testing.T) {
		w := post(r, "/api/auth/login", `{"username":"alice","password":"wrong"}`, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "用户名或密码错误")
		assert.NotContains(t, w.Body.String(), `"token"`)
	})

	t.Run("未知用户同样的错误消息", func(t *testing.T) {
		w := post(r, "/api/auth/login", `{"username":"ghost","password":"x"}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "用户名或密码错误")
	})

	t.Run("空密码不匹配任何用户", func(t *testing.T) {
		w := post(r, "/api/auth/login", `{"username":"alice","password":""}`, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMe(t *testing.T) {
	r, _ := newTestRouter(t)

	w := post(r, "/api/auth/login", `{"username":"alice","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	t.Run("有效令牌", func(t *testing.T) {
		w := get(r, "/api/auth/me", login.Token)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"alice"`)
		assert.NotContains(t, w.Body.String(), "secret")
	})

	t.Run("无令牌", func(t *testing.T) {
		w := get(r, "/api/auth/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("伪造令牌", func(t *testing.T) {
		w := get(r, "/api/auth/me", "forged-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogout(t *testing.T) {
	r, sessions := newTestRouter(t)

	w := post(r, "/api/auth/login", `{"username":"alice","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = post(r, "/api/auth/logout", "", login.Token)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := sessions.Get(context.Background(), login.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// 再次登出也是成功
	w = post(r, "/api/auth/logout", "", login.Token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionExpiry(t *testing.T) {
	sessions := NewMemorySessionStore()
	ctx := context.Background()

	s := &Session{Token: "tok", UserID: "u1", CreatedAt: time.Now()}
	require.NoError(t, sessions.Create(ctx, s, 10*time.Millisecond))

	got, err := sessions.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)

	time.Sleep(20 * time.Millisecond)
	_, err = sessions.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
