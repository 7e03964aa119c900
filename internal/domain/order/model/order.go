package model

import (
	"errors"
	"fmt"
	"time"
)

// Status 订单状态机：waiting/pending → processing/in_progress → completed，
// 任一非终态可以转向 failed/cancelled。
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

var ErrInvalidStatus = errors.New("非法的订单状态")

// Order 推广订单。Services 为服务标识 → 购买数量。
type Order struct {
	OrderID     string         `json:"orderId"`
	UserID      string         `json:"userId"`
	Platform    string         `json:"platform"`
	VideoURL    string         `json:"videoUrl"`
	Services    map[string]int `json:"services"`
	TotalAmount float64        `json:"totalAmount"`
	Status      Status         `json:"status"`
	Progress    int            `json:"progress"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Terminal 终态不再流转
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

func (s Status) valid() bool {
	switch s {
	case StatusWaiting, StatusPending, StatusProcessing, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// queued 尚未开始处理
func (s Status) queued() bool {
	return s == StatusWaiting || s == StatusPending
}

// active 处理中
func (s Status) active() bool {
	return s == StatusProcessing || s == StatusInProgress
}

// Transition 是状态和进度唯一的变更入口：状态前进时进度随之派生，
// completed 强制进度 100，两者不可能出现分歧。
func (o *Order) Transition(next Status) error {
	if !next.valid() {
		return ErrInvalidStatus
	}
	if o.Status.Terminal() {
		return fmt.Errorf("订单已处于终态 %s，不能再变更为 %s", o.Status, next)
	}

	switch {
	case next == StatusCancelled || next == StatusFailed:
		// 任一非终态都可以取消/失败，进度保持原值
	case o.Status.queued() && next.queued():
	case o.Status.queued() && next.active():
	case o.Status.active() && next.active():
	case o.Status.active() && next == StatusCompleted:
	default:
		return fmt.Errorf("不允许从 %s 变更为 %s", o.Status, next)
	}

	o.Status = next
	if next == StatusCompleted {
		o.Progress = 100
	}
	o.UpdatedAt = time.Now()
	return nil
}

// SetProgress 更新进度，进度到 100 时通过 Transition 收敛到 completed
func (o *Order) SetProgress(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("进度必须在 0-100 之间: %d", p)
	}
	if o.Status.Terminal() {
		return fmt.Errorf("订单已处于终态 %s，不能更新进度", o.Status)
	}

	if p == 100 {
		if o.Status.queued() {
			if err := o.Transition(StatusProcessing); err != nil {
				return err
			}
		}
		return o.Transition(StatusCompleted)
	}

	if p > 0 && o.Status.queued() {
		if err := o.Transition(StatusProcessing); err != nil {
			return err
		}
	}
	o.Progress = p
	o.UpdatedAt = time.Now()
	return nil
}
