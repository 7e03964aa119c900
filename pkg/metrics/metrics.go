package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector 指标收集器
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 同步层指标
	gatewayRequestsTotal *prometheus.CounterVec
	storeFallbacksTotal  *prometheus.CounterVec
	offlineMode          prometheus.Gauge
	probeDuration        prometheus.Histogram

	// 缓存指标
	cacheHitsTotal   *prometheus.CounterVec
	cacheMissesTotal *prometheus.CounterVec
}

// NewCollector 创建指标收集器并注册到 registerer。
// reg 为 nil 时使用默认注册表。
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		gatewayRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_gateway_requests_total",
				Help: "Gateway operations by outcome (remote, local, error)",
			},
			[]string{"operation", "outcome"},
		),
		storeFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sync_store_fallbacks_total",
				Help: "Per-layer fallback reads after a remote failure",
			},
			[]string{"layer"},
		),
		offlineMode: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sync_offline_mode",
				Help: "1 when the remote API is presumed unreachable",
			},
		),
		probeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sync_probe_duration_seconds",
				Help:    "Connectivity probe duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 3},
			},
		),
		cacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Cache hits by layer",
			},
			[]string{"layer"},
		),
		cacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Cache misses by layer",
			},
			[]string{"layer"},
		),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordGatewayRequest 记录一次网关操作及其结果来源
func (c *Collector) RecordGatewayRequest(operation, outcome string) {
	c.gatewayRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordStoreFallback 记录一次本地层回退读取
func (c *Collector) RecordStoreFallback(layer string) {
	c.storeFallbacksTotal.WithLabelValues(layer).Inc()
}

// SetOfflineMode 更新离线标志
func (c *Collector) SetOfflineMode(offline bool) {
	if offline {
		c.offlineMode.Set(1)
	} else {
		c.offlineMode.Set(0)
	}
}

// RecordProbe 记录一次探活耗时
func (c *Collector) RecordProbe(duration time.Duration) {
	c.probeDuration.Observe(duration.Seconds())
}

// RecordCacheHit 记录缓存命中
func (c *Collector) RecordCacheHit(layer string) {
	c.cacheHitsTotal.WithLabelValues(layer).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (c *Collector) RecordCacheMiss(layer string) {
	c.cacheMissesTotal.WithLabelValues(layer).Inc()
}
