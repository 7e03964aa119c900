package model

import (
	"fmt"
	"time"
)

// 通知级别
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

// Notification 站内通知，IsGlobal 为真时对所有用户可见，
// 否则只投递给 UserID 指定的用户。
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	IsGlobal  bool      `json:"isGlobal"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidType 检查通知级别是否合法
func ValidType(t string) bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError:
		return true
	}
	return false
}

// ReadSetKey 每个用户已读通知 ID 集合的存储键
func ReadSetKey(userID string) string {
	return fmt.Sprintf("notification_read_%s", userID)
}
