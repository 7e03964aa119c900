package dataapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"video_promo_shop/pkg/cache"
	"video_promo_shop/pkg/response"
	"video_promo_shop/pkg/store"
)

// 热点集合缓存時間。集合随时可能被整体覆盖，缓存只求挡住突发读
const cacheTTL = 30 * time.Second

// Handler 集合数据接口：整份读、整份写、删除、键枚举
type Handler struct {
	store store.Store
	cache cache.CacheService
	log   *zap.Logger
}

func NewHandler(st store.Store, c cache.CacheService, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: st, cache: c, log: log}
}

// Ping HEAD /api/ping 探活
func (h *Handler) Ping(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Keys GET /api/keys
func (h *Handler) Keys(c *gin.Context) {
	keys, err := h.store.Keys()
	if err != nil {
		h.log.Error("list keys failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "keys": keys})
}

// Get GET /api/data/:key
// 不存在的集合返回 success:true data:null，跟没有数据同义
func (h *Handler) Get(c *gin.Context) {
	key := c.Param("key")

	if h.cache != nil {
		var cached json.RawMessage
		if err := h.cache.Get(c.Request.Context(), "data:"+key, &cached); err == nil {
			c.JSON(http.StatusOK, gin.H{"success": true, "data": cached})
			return
		}
	}

	raw, err := h.store.Read(key)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil})
		return
	}
	if err != nil {
		h.log.Error("read collection failed", zap.String("key", key), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(c.Request.Context(), "data:"+key, json.RawMessage(raw), cacheTTL); err != nil {
			h.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": json.RawMessage(raw)})
}

type saveRequest struct {
	Data json.RawMessage `json:"data"`
}

// Save POST /api/data/:key
func (h *Handler) Save(c *gin.Context) {
	key := c.Param("key")

	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Data) == 0 {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "请求体必须包含 data 字段")
		return
	}

	if err := h.store.Write(key, req.Data); err != nil {
		h.log.Error("write collection failed", zap.String("key", key), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}
	h.invalidate(c, key)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "数据已保存"})
}

// Delete DELETE /api/data/:key，幂等
func (h *Handler) Delete(c *gin.Context) {
	key := c.Param("key")

	if err := h.store.Delete(key); err != nil {
		h.log.Error("delete collection failed", zap.String("key", key), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "服务器内部错误")
		return
	}
	h.invalidate(c, key)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "数据已删除"})
}

func (h *Handler) invalidate(c *gin.Context, key string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Delete(c.Request.Context(), "data:"+key); err != nil {
		h.log.Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
