package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/domain/invitecode/model"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

var (
	ErrCodeNotFound  = errors.New("邀请码不存在")
	ErrCodeExpired   = errors.New("邀请码已过期")
	ErrCodeExhausted = errors.New("邀请码已达到使用上限")
	ErrCodeExists    = errors.New("邀请码已存在")
)

type InviteCodeService interface {
	List(ctx context.Context) ([]model.InviteCode, error)
	Create(ctx context.Context, code *model.InviteCode) error
	// Validate 校验邀请码当前是否可用，不可用时返回对应的业务错误
	Validate(ctx context.Context, code string) (*model.InviteCode, error)
	// Use 消耗一次使用额度，先走 Validate 的全部检查
	Use(ctx context.Context, code string) error
	Delete(ctx context.Context, code string) error
	// SweepExpired 移除已过期的邀请码，返回清理数量
	SweepExpired(ctx context.Context) (int, error)
}

type inviteCodeService struct {
	api gateway.API
	now func() time.Time
}

func NewInviteCodeService(api gateway.API) InviteCodeService {
	return &inviteCodeService{api: api, now: time.Now}
}

func (s *inviteCodeService) List(ctx context.Context) ([]model.InviteCode, error) {
	return common.LoadCollection[model.InviteCode](ctx, s.api, store.KeyInviteCodes)
}

func (s *inviteCodeService) Create(ctx context.Context, code *model.InviteCode) error {
	errs := common.ValidationErrors{}
	if strings.TrimSpace(code.Code) == "" {
		errs.Add("code", "邀请码不能为空")
	}
	if code.UsageLimit < 1 {
		errs.Add("usageLimit", "使用次数上限不能小于 1")
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	codes, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range codes {
		if c.Code == code.Code {
			return ErrCodeExists
		}
	}

	if code.CreatedAt.IsZero() {
		code.CreatedAt = s.now()
	}
	codes = append(codes, *code)
	return common.SaveCollection(ctx, s.api, store.KeyInviteCodes, codes)
}

func (s *inviteCodeService) Validate(ctx context.Context, code string) (*model.InviteCode, error) {
	codes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range codes {
		if codes[i].Code != code {
			continue
		}
		if codes[i].Expired(s.now()) {
			return nil, ErrCodeExpired
		}
		if codes[i].Exhausted() {
			return nil, ErrCodeExhausted
		}
		return &codes[i], nil
	}
	return nil, ErrCodeNotFound
}

func (s *inviteCodeService) Use(ctx context.Context, code string) error {
	codes, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range codes {
		if codes[i].Code != code {
			continue
		}
		if codes[i].Expired(s.now()) {
			return ErrCodeExpired
		}
		if codes[i].Exhausted() {
			return ErrCodeExhausted
		}
		codes[i].UsedCount++
		return common.SaveCollection(ctx, s.api, store.KeyInviteCodes, codes)
	}
	return ErrCodeNotFound
}

func (s *inviteCodeService) Delete(ctx context.Context, code string) error {
	codes, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := codes[:0]
	for _, c := range codes {
		if c.Code != code {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(codes) {
		return ErrCodeNotFound
	}
	return common.SaveCollection(ctx, s.api, store.KeyInviteCodes, kept)
}

func (s *inviteCodeService) SweepExpired(ctx context.Context) (int, error) {
	codes, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	kept := codes[:0]
	for _, c := range codes {
		if !c.Expired(now) {
			kept = append(kept, c)
		}
	}
	removed := len(codes) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, common.SaveCollection(ctx, s.api, store.KeyInviteCodes, kept)
}
