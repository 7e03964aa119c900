package objectstore

import "video_promo_shop/pkg/store"

// StoreDef 单个对象库的结构定义
type StoreDef struct {
	Name    string   // 集合名
	KeyPath string   // 主键字段
	Unique  []string // 唯一约束字段
	Index   string   // 二级索引字段，空表示没有
}

// Schema 返回全部对象库定义。
// users 对 name/email、cardKeys 对 code 声明唯一约束；
// orders/transactions/notifications 按 userId 建二级索引。
func Schema() []StoreDef {
	return []StoreDef{
		{Name: store.KeyUsers, KeyPath: "id", Unique: []string{"name", "email"}},
		{Name: store.KeyOrders, KeyPath: "orderId", Index: "userId"},
		{Name: store.KeyServices, KeyPath: "key"},
		{Name: store.KeyInviteCodes, KeyPath: "code"},
		{Name: store.KeyTransactions, KeyPath: "id", Index: "userId"},
		{Name: store.KeyNotifications, KeyPath: "id", Index: "userId"},
		{Name: store.KeyCardKeys, KeyPath: "id", Unique: []string{"code"}},
	}
}

// 首次打开时种子数据：一个默认管理员和一个管理员邀请码
const (
	SeedAdminID         = "admin"
	SeedAdminName       = "admin"
	SeedAdminEmail      = "admin@example.com"
	SeedAdminPassword   = "admin123"
	SeedAdminInviteCode = "ADMIN888"
)

// CurrentSchemaVersion 当前结构版本，种子仅在从 0 升级时写入
const CurrentSchemaVersion = 1
