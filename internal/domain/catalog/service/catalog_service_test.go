package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/internal/domain/catalog/model"
	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

type stubAPI struct {
	mu   sync.Mutex
	data map[string]json.RawMessage
}

func newStubAPI() *stubAPI {
	return &stubAPI{data: make(map[string]json.RawMessage)}
}

func (s *stubAPI) GetData(_ context.Context, key string) (json.RawMessage, gateway.Freshness, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], gateway.StaleLocal, nil
}

func (s *stubAPI) SaveData(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return nil
}

func (s *stubAPI) DeleteData(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubAPI) Keys(_ context.Context) ([]string, gateway.Freshness, error) {
	return store.Collections(), gateway.StaleLocal, nil
}

func TestCatalogUpsert(t *testing.T) {
	svc := NewCatalogService(newStubAPI())
	ctx := context.Background()

	t.Run("新增条目", func(t *testing.T) {
		require.NoError(t, svc.Upsert(ctx, &model.Service{
			Key: "douyin_likes", Name: "点赞", Price: 0.5, MinPurchase: 100,
		}))
		got, err := svc.Get(ctx, "douyin_likes")
		require.NoError(t, err)
		assert.Equal(t, 0.5, got.Price)
	})

	t.Run("同 key 整体替换", func(t *testing.T) {
		require.NoError(t, svc.Upsert(ctx, &model.Service{
			Key: "douyin_likes", Name: "点赞", Price: 0.6, MinPurchase: 50, MaxPurchase: 10000,
		}))
		items, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 0.6, items[0].Price)
	})

	t.Run("非法区间返回字段错误", func(t *testing.T) {
		err := svc.Upsert(ctx, &model.Service{
			Key: "bad", Name: "坏条目", Price: -1, MinPurchase: 0, MaxPurchase: -2,
		})
		var verrs common.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "price")
		assert.Contains(t, verrs, "minPurchase")
		assert.Contains(t, verrs, "maxPurchase")
	})

	t.Run("上限小于下限", func(t *testing.T) {
		err := svc.Upsert(ctx, &model.Service{
			Key: "bad2", Name: "坏条目", Price: 1, MinPurchase: 100, MaxPurchase: 10,
		})
		var verrs common.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs, "maxPurchase")
	})
}

func TestCatalogCheckQuantity(t *testing.T) {
	svc := NewCatalogService(newStubAPI())
	item := &model.Service{Key: "k", Name: "播放量", Price: 0.1, MinPurchase: 100, MaxPurchase: 1000}

	assert.NoError(t, svc.CheckQuantity(item, 100))
	assert.NoError(t, svc.CheckQuantity(item, 1000))
	assert.Error(t, svc.CheckQuantity(item, 99))
	assert.Error(t, svc.CheckQuantity(item, 1001))

	// MaxPurchase 为 0 表示不限购
	unlimited := &model.Service{Key: "k2", Name: "粉丝", Price: 1, MinPurchase: 1, MaxPurchase: 0}
	assert.NoError(t, svc.CheckQuantity(unlimited, 1_000_000))
}

func TestCatalogDelete(t *testing.T) {
	svc := NewCatalogService(newStubAPI())
	ctx := context.Background()

	require.NoError(t, svc.Upsert(ctx, &model.Service{Key: "a", Name: "甲", Price: 1, MinPurchase: 1}))
	require.NoError(t, svc.Delete(ctx, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, "a"), ErrServiceNotFound)
}
