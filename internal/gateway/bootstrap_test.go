package gateway

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video_promo_shop/internal/pkg/config"
	"video_promo_shop/pkg/store"
)

func TestNewClientFromConfig(t *testing.T) {
	f := newFakeServer(t)
	dir := t.TempDir()

	client, err := NewClient(config.SyncConfig{
		BaseURL:               f.srv.URL,
		RequestTimeoutSeconds: 5,
		ProbeTimeoutSeconds:   3,
		PollIntervalSeconds:   30,
		SnapshotDir:           dir,
	}, nil, nil)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("探活走配置的地址", func(t *testing.T) {
		assert.True(t, client.Monitor.CheckNow(ctx))
		assert.True(t, client.Conn.Online())
	})

	t.Run("写入后快照目录有文件缓存", func(t *testing.T) {
		require.NoError(t, client.Gateway.SaveData(ctx, store.KeyServices, []map[string]interface{}{
			{"key": "likes", "name": "点赞", "price": 0.5},
		}))

		raw, err := os.ReadFile(filepath.Join(dir, "cache", store.KeyServices+".json"))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "likes")
	})

	t.Run("对象库种子用户可离线登录", func(t *testing.T) {
		client.Conn.MarkOffline()
		_, token, err := client.Gateway.Login(ctx, "admin", "admin123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(token, "offline_"))
	})
}

func TestNewClientSnapshotRestores(t *testing.T) {
	f := newFakeServer(t)
	dir := t.TempDir()
	cfg := config.SyncConfig{BaseURL: f.srv.URL, SnapshotDir: dir}
	ctx := context.Background()

	first, err := NewClient(cfg, nil, nil)
	require.NoError(t, err)
	require.NoError(t, first.Gateway.SaveData(ctx, store.KeyOrders, []map[string]interface{}{
		{"orderId": "o1", "status": "waiting"},
	}))

	// 第二个进程：远端已不可达，只剩快照目录
	f.srv.Close()
	second, err := NewClient(cfg, nil, nil)
	require.NoError(t, err)
	second.Conn.MarkOffline()

	raw, freshness, err := second.Gateway.GetData(ctx, store.KeyOrders)
	require.NoError(t, err)
	assert.Equal(t, StaleLocal, freshness)
	assert.Contains(t, string(raw), "o1")
}

func TestNewClientSessionSurvivesRestart(t *testing.T) {
	f := newFakeServer(t)
	dir := t.TempDir()
	cfg := config.SyncConfig{BaseURL: f.srv.URL, SnapshotDir: dir}
	ctx := context.Background()

	first, err := NewClient(cfg, nil, nil)
	require.NoError(t, err)
	_, _, err = first.Gateway.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	f.srv.Close()
	second, err := NewClient(cfg, nil, nil)
	require.NoError(t, err)
	second.Conn.MarkOffline()

	user, freshness, err := second.Gateway.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, StaleLocal, freshness)
	assert.Equal(t, "alice", user["name"])
}

func TestNewClientInMemory(t *testing.T) {
	client, err := NewClient(config.SyncConfig{BaseURL: "http://127.0.0.1:1"}, nil, nil)
	require.NoError(t, err)
	client.Conn.MarkOffline()

	ctx := context.Background()
	require.NoError(t, client.Gateway.SaveData(ctx, store.KeyUsers, []map[string]interface{}{
		{"id": "u9", "name": "bob"},
	}))

	raw, freshness, err := client.Gateway.GetData(ctx, store.KeyUsers)
	require.NoError(t, err)
	assert.Equal(t, StaleLocal, freshness)
	assert.Contains(t, string(raw), "bob")
}

func TestNewClientDefaultTimeouts(t *testing.T) {
	client, err := NewClient(config.SyncConfig{BaseURL: "http://localhost:9"}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, client.Gateway.client.Timeout)
	assert.Equal(t, 3*time.Second, client.Monitor.client.Timeout)
	assert.Equal(t, 30*time.Second, client.Monitor.interval)
}
