// Package mirror 实现本地镜像缓存：进程内 map，记录最近一次读/写的集合内容，
// 避免重复请求。对应浏览器端的 localStorage 缓存层，
// 可选地透写到一个 store.Store 后端，跨进程保留登录态。
package mirror

import (
	"encoding/json"
	"fmt"
	"sync"

	"video_promo_shop/pkg/store"
)

// 镜像中除集合之外的保留 key
const (
	KeyAuthToken   = "auth_token"
	KeyCurrentUser = "current_user"
)

// Mirror 本地镜像缓存
type Mirror struct {
	data    map[string]json.RawMessage
	backing store.Store // 可为 nil
	mu      sync.RWMutex
}

// New 创建空镜像
func New() *Mirror {
	return &Mirror{data: make(map[string]json.RawMessage)}
}

// NewPersistent 创建带透写后端的镜像：构造时把后端里已有的
// key 全部载入内存，之后每次写/删都同步到后端。后端写入失败
// 只影响持久化，内存里的值照常生效。
func NewPersistent(backing store.Store) *Mirror {
	m := &Mirror{
		data:    make(map[string]json.RawMessage),
		backing: backing,
	}
	if keys, err := backing.Keys(); err == nil {
		for _, key := range keys {
			if raw, err := backing.Read(key); err == nil {
				m.data[key] = raw
			}
		}
	}
	return m
}

// Get 读取镜像内容，未命中返回 false
func (m *Mirror) Get(key string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, true
}

// GetInto 读取并反序列化到 dest
func (m *Mirror) GetInto(key string, dest interface{}) error {
	raw, ok := m.Get(key)
	if !ok {
		return fmt.Errorf("mirror miss: %s", key)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("mirror unmarshal %s: %w", key, err)
	}
	return nil
}

// Set 写入原始 JSON
func (m *Mirror) Set(key string, raw json.RawMessage) {
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = cp
	if m.backing != nil {
		_ = m.backing.Write(key, cp)
	}
}

// SetValue 序列化 value 后写入
func (m *Mirror) SetValue(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("mirror marshal %s: %w", key, err)
	}
	m.Set(key, raw)
	return nil
}

// Delete 删除缓存项
func (m *Mirror) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	if m.backing != nil {
		_ = m.backing.Delete(key)
	}
}

// Has 判断 key 是否在镜像中
func (m *Mirror) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[key]
	return ok
}

// Clear 清空镜像
func (m *Mirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.backing != nil {
		for key := range m.data {
			_ = m.backing.Delete(key)
		}
	}
	m.data = make(map[string]json.RawMessage)
}
