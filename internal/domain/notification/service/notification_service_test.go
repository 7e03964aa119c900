package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/internal/domain/notification/model"
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

func seed(t *testing.T, svc NotificationService) (global, mine, other *model.Notification) {
	ctx := context.Background()
	global = &model.Notification{Title: "系统维护", Type: model.TypeWarning, CreatedAt: time.Now().Add(-2 * time.Hour)}
	mine = &model.Notification{Title: "订单完成", Type: model.TypeSuccess, UserID: "u1", CreatedAt: time.Now().Add(-time.Hour)}
	other = &model.Notification{Title: "别人的", UserID: "u2", CreatedAt: time.Now()}
	require.NoError(t, svc.Publish(ctx, global))
	require.NoError(t, svc.Publish(ctx, mine))
	require.NoError(t, svc.Publish(ctx, other))
	return
}

func TestNotificationListForUser(t *testing.T) {
	svc := NewNotificationService(newStubAPI())
	ctx := context.Background()
	global, mine, _ := seed(t, svc)

	views, err := svc.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, views, 2, "全局 + 定向，不含别人的")

	// 时间倒序
	assert.Equal(t, mine.ID, views[0].ID)
	assert.Equal(t, global.ID, views[1].ID)
	assert.False(t, views[0].IsRead)
	assert.True(t, views[1].IsGlobal)
}

func TestNotificationReadState(t *testing.T) {
	svc := NewNotificationService(newStubAPI())
	ctx := context.Background()
	global, mine, _ := seed(t, svc)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkRead(ctx, "u1", global.ID))
	// 重复标记幂等
	require.NoError(t, svc.MarkRead(ctx, "u1", global.ID))

	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 已读状态是每个用户独立的
	count, err = svc.UnreadCount(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllRead(ctx, "u1"))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, count)
	_ = mine
}

func TestNotificationPublishValidation(t *testing.T) {
	svc := NewNotificationService(newStubAPI())
	ctx := context.Background()

	assert.Error(t, svc.Publish(ctx, &model.Notification{Title: " "}))
	assert.Error(t, svc.Publish(ctx, &model.Notification{Title: "t", Type: "fatal"}))

	// 不带类型时默认 info，不带 userId 时为全局
	n := &model.Notification{Title: "公告"}
	require.NoError(t, svc.Publish(ctx, n))
	assert.Equal(t, model.TypeInfo, n.Type)
	assert.True(t, n.IsGlobal)
}

func TestNotificationDelete(t *testing.T) {
	svc := NewNotificationService(newStubAPI())
	ctx := context.Background()
	global, _, _ := seed(t, svc)

	require.NoError(t, svc.Delete(ctx, global.ID))
	assert.ErrorIs(t, svc.Delete(ctx, global.ID), ErrNotificationNotFound)
}
