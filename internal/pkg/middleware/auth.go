package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"video_promo_shop/internal/server/auth"
	"video_promo_shop/pkg/response"
)

// AuthMiddleware 会话认证中间件。
// Authorization 头直接携带不透明令牌（没有 Bearer 前缀），
// 以令牌为键查服务端会话，过期由会话存储负责。
func AuthMiddleware(sessions auth.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "未登录")
			c.Abort()
			return
		}

		session, err := sessions.Get(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "会话已过期")
			c.Abort()
			return
		}

		c.Set("userID", session.UserID)
		c.Set("isAdmin", session.IsAdmin)
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，必须在 AuthMiddleware 之后使用
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		isAdmin, exists := c.Get("isAdmin")
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "未登录")
			c.Abort()
			return
		}
		if admin, ok := isAdmin.(bool); !ok || !admin {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
