package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/domain/notification/model"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

var ErrNotificationNotFound = errors.New("通知不存在")

// UserView 面向单个用户的通知视图
type UserView struct {
	model.Notification
	IsRead bool `json:"isRead"`
}

type NotificationService interface {
	// Publish 发布通知；userID 为空时作为全局通知
	Publish(ctx context.Context, n *model.Notification) error
	// ListForUser 返回全局通知加上投递给该用户的通知，按时间倒序，带已读标记
	ListForUser(ctx context.Context, userID string) ([]UserView, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type notificationService struct {
	api gateway.API
}

func NewNotificationService(api gateway.API) NotificationService {
	return &notificationService{api: api}
}

func (s *notificationService) Publish(ctx context.Context, n *model.Notification) error {
	errs := common.ValidationErrors{}
	if strings.TrimSpace(n.Title) == "" {
		errs.Add("title", "标题不能为空")
	}
	if n.Type == "" {
		n.Type = model.TypeInfo
	}
	if !model.ValidType(n.Type) {
		errs.Add("type", "非法的通知类型")
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.IsGlobal = n.UserID == ""

	all, err := s.list(ctx)
	if err != nil {
		return err
	}
	all = append(all, *n)
	return common.SaveCollection(ctx, s.api, store.KeyNotifications, all)
}

func (s *notificationService) ListForUser(ctx context.Context, userID string) ([]UserView, error) {
	all, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	read, err := s.readSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]UserView, 0)
	for _, n := range all {
		if !n.IsGlobal && n.UserID != userID {
			continue
		}
		views = append(views, UserView{Notification: n, IsRead: read[n.ID]})
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
	return views, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	read, err := s.readSet(ctx, userID)
	if err != nil {
		return err
	}
	if read[notificationID] {
		return nil
	}
	read[notificationID] = true
	return s.saveReadSet(ctx, userID, read)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	views, err := s.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	read := make(map[string]bool, len(views))
	for _, v := range views {
		read[v.ID] = true
	}
	return s.saveReadSet(ctx, userID, read)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	views, err := s.ListForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, v := range views {
		if !v.IsRead {
			count++
		}
	}
	return count, nil
}

func (s *notificationService) Delete(ctx context.Context, id string) error {
	all, err := s.list(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, n := range all {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(all) {
		return ErrNotificationNotFound
	}
	return common.SaveCollection(ctx, s.api, store.KeyNotifications, kept)
}

func (s *notificationService) list(ctx context.Context) ([]model.Notification, error) {
	return common.LoadCollection[model.Notification](ctx, s.api, store.KeyNotifications)
}

// readSet 已读集合按 ID 数组存储，读成 set 方便查询
func (s *notificationService) readSet(ctx context.Context, userID string) (map[string]bool, error) {
	ids, err := common.LoadCollection[string](ctx, s.api, model.ReadSetKey(userID))
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

func (s *notificationService) saveReadSet(ctx context.Context, userID string, read map[string]bool) error {
	ids := make([]string, 0, len(read))
	for id := range read {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return common.SaveCollection(ctx, s.api, model.ReadSetKey(userID), ids)
}
