package model

import "time"

// CardKey 充值卡密，code 唯一且只能兑换一次
type CardKey struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	Amount    float64    `json:"amount"`
	CreatedAt time.Time  `json:"createdAt"`
	ExpiresAt time.Time  `json:"expiresAt,omitempty"`
	IsUsed    bool       `json:"isUsed"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UsedBy    string     `json:"usedBy,omitempty"`
}

// Expired 判断在给定时刻是否已过期
func (k CardKey) Expired(now time.Time) bool {
	return !k.ExpiresAt.IsZero() && now.After(k.ExpiresAt)
}
