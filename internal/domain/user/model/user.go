package model

import "time"

// User 用户记录。密码按原始数据模型以明文字段存储，
// 但序列化时不回传给前端。
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"password"`
	Balance   float64   `json:"balance"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public 返回去掉密码的副本，用于对外展示
func (u User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":        u.ID,
		"name":      u.Name,
		"email":     u.Email,
		"phone":     u.Phone,
		"balance":   u.Balance,
		"isAdmin":   u.IsAdmin,
		"createdAt": u.CreatedAt,
	}
}
