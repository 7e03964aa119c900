package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorCheckNow(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if healthy.Load() {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	conn := NewConnectivity(false)
	m := NewMonitor(MonitorOptions{BaseURL: srv.URL, Conn: conn})
	ctx := context.Background()

	t.Run("探活成功切到在线", func(t *testing.T) {
		assert.True(t, m.CheckNow(ctx))
		assert.True(t, conn.Online())
	})

	t.Run("5xx 视为不可用", func(t *testing.T) {
		healthy.Store(false)
		assert.False(t, m.CheckNow(ctx))
		assert.False(t, conn.Online())
	})

	t.Run("恢复后再次切回在线", func(t *testing.T) {
		healthy.Store(true)
		assert.True(t, m.CheckNow(ctx))
		assert.True(t, conn.Online())
	})
}

func TestMonitorCheckNowUnreachable(t *testing.T) {
	conn := NewConnectivity(true)
	m := NewMonitor(MonitorOptions{
		BaseURL:      "http://127.0.0.1:1",
		ProbeTimeout: 200 * time.Millisecond,
		Conn:         conn,
	})

	assert.False(t, m.CheckNow(context.Background()))
	assert.False(t, conn.Online())
}

func TestMonitorOnlineHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	conn := NewConnectivity(true)
	m := NewMonitor(MonitorOptions{BaseURL: srv.URL, Conn: conn})
	ctx := context.Background()

	// 离线信号直接采信
	m.SetOnlineHint(ctx, false)
	assert.False(t, conn.Online())

	// 在线信号要经过探活确认
	m.SetOnlineHint(ctx, true)
	assert.True(t, conn.Online())
}

func TestMonitorBackgroundPolling(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	conn := NewConnectivity(false)
	m := NewMonitor(MonitorOptions{
		BaseURL:      srv.URL,
		PollInterval: 20 * time.Millisecond,
		Conn:         conn,
	})

	m.Start(context.Background())
	defer m.Stop()

	require.Eventually(t, func() bool {
		return probes.Load() >= 2 && conn.Online()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnectivitySubscribe(t *testing.T) {
	conn := NewConnectivity(true)

	var events []bool
	conn.Subscribe(func(online bool) {
		events = append(events, online)
	})

	conn.MarkOnline() // 状态未变化，不触发
	conn.MarkOffline()
	conn.MarkOffline() // 重复离线不触发
	conn.MarkOnline()

	assert.Equal(t, []bool{false, true}, events)
	assert.True(t, conn.Online())
	assert.False(t, conn.Since().IsZero())
}
