package auth

import (
	"time"

	"github.com/gin-gonic/gin"

	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/internal/pkg/registry"
)

// Module 认证模块
type Module struct{}

func init() {
	registry.Register(&Module{})
}

func (m *Module) Name() string {
	return "auth"
}

func (m *Module) Priority() int {
	// 认证模块最先初始化，数据接口依赖它的会话存储
	return 1
}

func (m *Module) Init(ctx *registry.ModuleContext) error {
	var sessions SessionStore
	if ctx.Redis != nil {
		sessions = NewRedisSessionStore(ctx.Redis)
	} else {
		sessions = NewMemorySessionStore()
	}

	ttl := time.Duration(config.GlobalConfig.Auth.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	handler := NewHandler(sessions, ctx.Store, ttl, ctx.Log)
	setupRoutes(ctx.Router, handler)

	// 数据接口模块通过上下文拿会话存储做鉴权
	defaultSessions = sessions
	return nil
}

// defaultSessions 当前进程的会话存储，Init 之后有效
var defaultSessions SessionStore

// Sessions 返回认证模块初始化好的会话存储
func Sessions() SessionStore {
	return defaultSessions
}

func setupRoutes(r *gin.Engine, h *Handler) {
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.Me)
	}
}
