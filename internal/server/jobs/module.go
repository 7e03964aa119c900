package jobs

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cardkeyService "video_promo_shop/internal/domain/cardkey/service"
	invitecodeService "video_promo_shop/internal/domain/invitecode/service"
	txnService "video_promo_shop/internal/domain/transaction/service"
	userService "video_promo_shop/internal/domain/user/service"
	"video_promo_shop/internal/pkg/middleware"
	"video_promo_shop/internal/pkg/registry"
	"video_promo_shop/internal/server/auth"
	"video_promo_shop/pkg/cache"
)

// Module 定时清理模块：过期邀请码和过期未用卡密定期下线。
// 同样的清理可以由管理员通过接口手动触发。
type Module struct{}

func init() {
	registry.Register(&Module{})
}

func (m *Module) Name() string {
	return "jobs"
}

func (m *Module) Priority() int {
	// 依赖 auth 模块的会话存储
	return 20
}

func (m *Module) Init(ctx *registry.ModuleContext) error {
	api := &storeAPI{store: ctx.Store}
	users := userService.NewUserService(api)
	txns := txnService.NewTransactionService(api, users)

	sweeper := &sweeper{
		invites:  invitecodeService.NewInviteCodeService(api),
		cardKeys: cardkeyService.NewCardKeyService(api, txns),
		cache:    ctx.Cache,
		log:      ctx.Log,
	}

	if ctx.Cron != nil {
		if _, err := ctx.Cron.AddFunc("@hourly", sweeper.run); err != nil {
			return err
		}
	}

	admin := ctx.Router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(auth.Sessions()), middleware.AdminMiddleware())
	{
		admin.POST("/sweep", sweeper.handleSweep)
	}
	return nil
}

type sweeper struct {
	invites  invitecodeService.InviteCodeService
	cardKeys cardkeyService.CardKeyService
	cache    cache.CacheService
	log      *zap.Logger
}

func (s *sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.sweep(ctx)
}

func (s *sweeper) sweep(ctx context.Context) (invites, cardKeys int) {
	log := s.log
	if log == nil {
		log = zap.NewNop()
	}

	invites, err := s.invites.SweepExpired(ctx)
	if err != nil {
		log.Warn("invite code sweep failed", zap.Error(err))
	}
	cardKeys, err = s.cardKeys.SweepExpired(ctx)
	if err != nil {
		log.Warn("card key sweep failed", zap.Error(err))
	}

	if invites > 0 || cardKeys > 0 {
		// 清理绕过了数据接口，读缓存里的旧副本要一并失效
		if s.cache != nil {
			if err := s.cache.InvalidatePattern(ctx, "data:*"); err != nil {
				log.Warn("cache invalidate after sweep failed", zap.Error(err))
			}
		}
		log.Info("expired records swept",
			zap.Int("invite_codes", invites),
			zap.Int("card_keys", cardKeys),
		)
	}
	return invites, cardKeys
}

// handleSweep POST /api/admin/sweep 手动触发一次清理
func (s *sweeper) handleSweep(c *gin.Context) {
	invites, cardKeys := s.sweep(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"inviteCodes": invites,
			"cardKeys":    cardKeys,
		},
	})
}
