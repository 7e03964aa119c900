package model

import (
	"fmt"
	"time"
)

// 交易类型
const (
	TypeRecharge    = "recharge"    // 充值
	TypeConsumption = "consumption" // 消费
	TypeRefund      = "refund"      // 退款
	TypeWithdrawal  = "withdrawal"  // 提现
)

// Transaction 资金流水，Amount 带符号，负数为扣款
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	RelatedID   string    `json:"relatedId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ValidType 检查交易类型是否合法
func ValidType(t string) bool {
	switch t {
	case TypeRecharge, TypeConsumption, TypeRefund, TypeWithdrawal:
		return true
	}
	return false
}

// UserKey 每个用户独立的流水集合键
func UserKey(userID string) string {
	return fmt.Sprintf("transactions_%s", userID)
}
