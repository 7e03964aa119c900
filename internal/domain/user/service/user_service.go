package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/domain/user/model"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrInsufficientBalance = errors.New("余额不足")
)

type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, id string) error
	// AdjustBalance 按增量调整余额，结果不允许为负，返回调整后的余额
	AdjustBalance(ctx context.Context, id string, delta float64) (float64, error)
}

type userService struct {
	api gateway.API
}

func NewUserService(api gateway.API) UserService {
	return &userService{api: api}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return common.LoadCollection[model.User](ctx, s.api, store.KeyUsers)
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *userService) Create(ctx context.Context, u *model.User) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := validate(u, users, ""); err != nil {
		return err
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}

	users = append(users, *u)
	return common.SaveCollection(ctx, s.api, store.KeyUsers, users)
}

func (s *userService) Update(ctx context.Context, u *model.User) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	if err := validate(u, users, u.ID); err != nil {
		return err
	}

	for i := range users {
		if users[i].ID == u.ID {
			users[i] = *u
			return common.SaveCollection(ctx, s.api, store.KeyUsers, users)
		}
	}
	return ErrUserNotFound
}

func (s *userService) Delete(ctx context.Context, id string) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(users) {
		return ErrUserNotFound
	}
	return common.SaveCollection(ctx, s.api, store.KeyUsers, kept)
}

func (s *userService) AdjustBalance(ctx context.Context, id string, delta float64) (float64, error) {
	users, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	for i := range users {
		if users[i].ID != id {
			continue
		}
		next := users[i].Balance + delta
		if next < 0 {
			return users[i].Balance, ErrInsufficientBalance
		}
		users[i].Balance = next
		if err := common.SaveCollection(ctx, s.api, store.KeyUsers, users); err != nil {
			return users[i].Balance, err
		}
		return next, nil
	}
	return 0, ErrUserNotFound
}

// validate 检查必填字段和集合内 name/email 唯一约束，
// selfID 非空时跳过自身记录（更新场景）。
func validate(u *model.User, users []model.User, selfID string) error {
	errs := common.ValidationErrors{}
	if strings.TrimSpace(u.Name) == "" {
		errs.Add("name", "用户名不能为空")
	}
	if strings.TrimSpace(u.Email) == "" {
		errs.Add("email", "邮箱不能为空")
	}
	if u.Password == "" {
		errs.Add("password", "密码不能为空")
	}

	for _, existing := range users {
		if selfID != "" && existing.ID == selfID {
			continue
		}
		if existing.Name == u.Name {
			errs.Add("name", "用户名已存在")
		}
		if existing.Email == u.Email {
			errs.Add("email", "邮箱已被注册")
		}
	}
	return errs.OrNil()
}
