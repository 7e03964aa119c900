package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"video_promo_shop/pkg/metrics"
)

// Monitor 连通性监视器：固定间隔对远端做轻量 HEAD 探活，
// 配合运行环境给出的在线/离线信号，维护共享的连通性状态。
// 单次探活失败立即翻转状态，不做防抖。
type Monitor struct {
	base     string
	client   *http.Client
	conn     *Connectivity
	interval time.Duration
	log      *zap.Logger
	metrics  *metrics.Collector

	mu     sync.Mutex
	cancel context.CancelFunc
}

// MonitorOptions 监视器构造选项
type MonitorOptions struct {
	BaseURL      string
	ProbeTimeout time.Duration // 默认 3s
	PollInterval time.Duration // 默认 30s
	Conn         *Connectivity
	Logger       *zap.Logger
	Metrics      *metrics.Collector // 可为 nil
}

// NewMonitor 创建监视器
func NewMonitor(opts MonitorOptions) *Monitor {
	timeout := opts.ProbeTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Monitor{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		conn:     opts.Conn,
		interval: interval,
		log:      log,
		metrics:  opts.Metrics,
	}
}

// Start 启动后台轮询，重复调用只有第一次生效
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop 停止后台轮询
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// CheckNow 立即执行一次探活（用户手动刷新走这里），
// 返回探活结果并同步连通性状态。
func (m *Monitor) CheckNow(ctx context.Context) bool {
	start := time.Now()
	ok := m.probe(ctx)
	if m.metrics != nil {
		m.metrics.RecordProbe(time.Since(start))
	}

	if ok {
		if !m.conn.Online() {
			m.log.Info("connectivity restored")
		}
		m.conn.MarkOnline()
	} else {
		if m.conn.Online() {
			m.log.Warn("connectivity lost")
		}
		m.conn.MarkOffline()
	}
	return ok
}

// SetOnlineHint 接收运行环境的在线/离线信号作为次级输入。
// 离线信号直接采信；在线信号触发一次探活确认。
func (m *Monitor) SetOnlineHint(ctx context.Context, online bool) {
	if !online {
		m.conn.MarkOffline()
		return
	}
	m.CheckNow(ctx)
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.base+"/api/ping", nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode < 500
}
