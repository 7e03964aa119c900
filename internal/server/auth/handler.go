package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"video_promo_shop/pkg/response"
	"video_promo_shop/pkg/security"
	"video_promo_shop/pkg/store"
)

// Handler 登录/登出/当前用户三个认证接口
type Handler struct {
	sessions SessionStore
	store    store.Store
	ttl      time.Duration
	log      *zap.Logger
}

func NewHandler(sessions SessionStore, st store.Store, ttl time.Duration, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{sessions: sessions, store: st, ttl: ttl, log: log}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login POST /api/auth/login
// 用户名可以匹配 name 或 email，密码精确比对。
// 失败统一返回 401 用户名或密码错误，不区分用户不存在和密码错误。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "请求格式错误")
		return
	}

	user, ok := h.findUser(req.Username, req.Password)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, "用户名或密码错误")
		return
	}

	token, err := security.NewSessionToken()
	if err != nil {
		h.log.Error("generate session token failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}

	isAdmin, _ := user["isAdmin"].(bool)
	userID, _ := user["id"].(string)
	session := &Session{
		Token:     token,
		UserID:    userID,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now(),
	}
	if err := h.sessions.Create(c.Request.Context(), session, h.ttl); err != nil {
		h.log.Error("persist session failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}

	delete(user, "password")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

// Logout POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if token != "" {
		if err := h.sessions.Delete(c.Request.Context(), token); err != nil {
			h.log.Warn("delete session failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	token := c.GetHeader("Authorization")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "未登录")
		return
	}

	session, err := h.sessions.Get(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "会话已过期")
		return
	}

	user, ok := h.userByID(session.UserID)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.ErrUserNotFound, "用户不存在")
		return
	}

	delete(user, "password")
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
	})
}

// findUser 在用户集合里按 name 或 email 加密码精确匹配
func (h *Handler) findUser(username, password string) (map[string]interface{}, bool) {
	for _, u := range h.users() {
		name, _ := u["name"].(string)
		email, _ := u["email"].(string)
		pass, _ := u["password"].(string)
		if (name == username || email == username) && pass == password && password != "" {
			return u, true
		}
	}
	return nil, false
}

func (h *Handler) userByID(id string) (map[string]interface{}, bool) {
	for _, u := range h.users() {
		if uid, _ := u["id"].(string); uid == id {
			return u, true
		}
	}
	return nil, false
}

func (h *Handler) users() []map[string]interface{} {
	raw, err := h.store.Read(store.KeyUsers)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Warn("read users collection failed", zap.Error(err))
		}
		return nil
	}

	var users []map[string]interface{}
	if err := json.Unmarshal(raw, &users); err != nil {
		h.log.Warn("users collection corrupt", zap.Error(err))
		return nil
	}
	return users
}
