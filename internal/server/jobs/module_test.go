package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardkeyService "video_promo_shop/internal/domain/cardkey/service"
	invitecodeModel "video_promo_shop/internal/domain/invitecode/model"
	invitecodeService "video_promo_shop/internal/domain/invitecode/service"
	txnService "video_promo_shop/internal/domain/transaction/service"
	userService "video_promo_shop/internal/domain/user/service"
	"video_promo_shop/pkg/cache"
	"video_promo_shop/pkg/store/filestore"
)

// recordingCache 记录失效调用的缓存桩
type recordingCache struct {
	patterns []string
}

func (c *recordingCache) Get(ctx context.Context, key string, dest interface{}) error {
	return cache.ErrCacheMiss
}

func (c *recordingCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	return nil
}

func (c *recordingCache) InvalidatePattern(ctx context.Context, pattern string) error {
	c.patterns = append(c.patterns, pattern)
	return nil
}

func TestSweeper(t *testing.T) {
	api := &storeAPI{store: filestore.NewMemStore()}
	ctx := context.Background()

	invites := invitecodeService.NewInviteCodeService(api)
	users := userService.NewUserService(api)
	cardKeys := cardkeyService.NewCardKeyService(api, txnService.NewTransactionService(api, users))

	require.NoError(t, invites.Create(ctx, &invitecodeModel.InviteCode{Code: "KEEP", UsageLimit: 1}))
	require.NoError(t, invites.Create(ctx, &invitecodeModel.InviteCode{
		Code: "GONE", UsageLimit: 1, ExpiresAt: time.Now().Add(-time.Minute),
	}))
	_, err := cardKeys.Generate(ctx, 10, 2, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	rc := &recordingCache{}
	s := &sweeper{invites: invites, cardKeys: cardKeys, cache: rc}
	sweptInvites, sweptKeys := s.sweep(ctx)
	assert.Equal(t, 1, sweptInvites)
	assert.Equal(t, 2, sweptKeys)
	assert.Equal(t, []string{"data:*"}, rc.patterns, "清理后要失效数据接口的读缓存")

	// 第二次没有可清理的，也不该再碰缓存
	sweptInvites, sweptKeys = s.sweep(ctx)
	assert.Zero(t, sweptInvites)
	assert.Zero(t, sweptKeys)
	assert.Len(t, rc.patterns, 1)

	remaining, err := invites.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "KEEP", remaining[0].Code)
}

func TestStoreAPIRoundTrip(t *testing.T) {
	api := &storeAPI{store: filestore.NewMemStore()}
	ctx := context.Background()

	raw, _, err := api.GetData(ctx, "orders")
	require.NoError(t, err)
	assert.Nil(t, raw, "缺失集合按无数据处理")

	require.NoError(t, api.SaveData(ctx, "orders", []string{"a"}))
	raw, _, err = api.GetData(ctx, "orders")
	require.NoError(t, err)
	assert.JSONEq(t, `["a"]`, string(raw))

	require.NoError(t, api.DeleteData(ctx, "orders"))
	require.NoError(t, api.DeleteData(ctx, "orders"))
}
