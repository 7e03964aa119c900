package dataapi

import (
	"github.com/gin-gonic/gin"

	"video_promo_shop/internal/pkg/registry"
)

// Module 数据接口模块
type Module struct{}

func init() {
	registry.Register(&Module{})
}

func (m *Module) Name() string {
	return "dataapi"
}

func (m *Module) Priority() int {
	return 10
}

func (m *Module) Init(ctx *registry.ModuleContext) error {
	handler := NewHandler(ctx.Store, ctx.Cache, ctx.Log)
	setupRoutes(ctx.Router, handler)
	return nil
}

func setupRoutes(r *gin.Engine, h *Handler) {
	r.HEAD("/api/ping", h.Ping)

	api := r.Group("/api")
	{
		api.GET("/keys", h.Keys)
		api.GET("/data/:key", h.Get)
		api.POST("/data/:key", h.Save)
		api.DELETE("/data/:key", h.Delete)
	}
}
