package gateway

import (
	"sync"
	"time"
)

// Connectivity 连通性状态对象。
// 取代进程级可变标志：由构造方注入网关和监视器，
// 测试可以各自持有独立实例，确定性地模拟离线/在线。
type Connectivity struct {
	mu     sync.RWMutex
	online bool
	since  time.Time
	subs   []func(online bool)
}

// NewConnectivity 创建状态对象，initialOnline 为初始假定
func NewConnectivity(initialOnline bool) *Connectivity {
	return &Connectivity{online: initialOnline, since: time.Now()}
}

// Online 返回当前是否在线
func (c *Connectivity) Online() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// Since 返回进入当前状态的时刻
func (c *Connectivity) Since() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.since
}

// MarkOnline 标记恢复在线，状态变化时通知订阅者
func (c *Connectivity) MarkOnline() {
	c.set(true)
}

// MarkOffline 标记远端不可达
func (c *Connectivity) MarkOffline() {
	c.set(false)
}

func (c *Connectivity) set(online bool) {
	c.mu.Lock()
	changed := c.online != online
	if changed {
		c.online = online
		c.since = time.Now()
	}
	subs := c.subs
	c.mu.Unlock()

	if !changed {
		return
	}
	// 回调在锁外执行，订阅者可以安全地再读状态
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe 注册状态变化回调，驱动界面上的离线指示
func (c *Connectivity) Subscribe(fn func(online bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, fn)
}
