package model

import "time"

// InviteCode 注册邀请码，code 为唯一键。
// ExpiresAt 为零值表示永不过期。
type InviteCode struct {
	Code       string    `json:"code"`
	IsAdmin    bool      `json:"isAdmin"`
	UsageLimit int       `json:"usageLimit"`
	UsedCount  int       `json:"usedCount"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt,omitempty"`
}

// Expired 判断在给定时刻是否已过期
func (c InviteCode) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Exhausted 使用次数是否已达上限
func (c InviteCode) Exhausted() bool {
	return c.UsedCount >= c.UsageLimit
}
