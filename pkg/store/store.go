// Package store 定义集合存储的公共契约。
// 每个集合作为一个整体 JSON 块按 key 读写，具体后端见子包
// filestore（JSON 文件 / 内存）与 docstore（Postgres jsonb）。
package store

import "errors"

// ErrNotFound 表示指定集合不存在
var ErrNotFound = errors.New("store: key not found")

// Store 集合存储接口
// Write 整体替换集合内容，Delete 对不存在的 key 也返回成功（幂等）
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// 集合 key 常量
const (
	KeyUsers         = "users"
	KeyOrders        = "orders"
	KeyServices      = "services"
	KeyInviteCodes   = "inviteCodes"
	KeyTransactions  = "transactions"
	KeyNotifications = "notifications"
	KeyCardKeys      = "cardKeys"
)

// Collections 返回已知集合 key 的固定列表。
// 离线模式下 getAllKeys 返回的就是这份列表，而不是真实目录枚举。
func Collections() []string {
	return []string{
		KeyUsers,
		KeyOrders,
		KeyServices,
		KeyInviteCodes,
		KeyTransactions,
		KeyNotifications,
		KeyCardKeys,
	}
}
