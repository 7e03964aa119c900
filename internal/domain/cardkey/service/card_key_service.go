package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"video_promo_shop/internal/domain/cardkey/model"
	"video_promo_shop/internal/domain/common"
	txnModel "video_promo_shop/internal/domain/transaction/model"
	txnService "video_promo_shop/internal/domain/transaction/service"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/security"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/utils"
)

var (
	ErrKeyNotFound = errors.New("卡密不存在")
	ErrKeyExpired  = errors.New("卡密已过期")
	ErrKeyUsed     = errors.New("卡密已被使用")
	ErrBadAmount   = errors.New("卡密面额必须大于 0")
)

type CardKeyService interface {
	List(ctx context.Context) ([]model.CardKey, error)
	// Generate 批量生成指定面额的卡密
	Generate(ctx context.Context, amount float64, count int, expiresAt time.Time) ([]model.CardKey, error)
	// Redeem 兑换：标记已用先落盘，然后给用户记一笔充值流水。
	// 同一卡密第二次兑换必须失败。
	Redeem(ctx context.Context, code, userID string) (float64, error)
	Delete(ctx context.Context, id string) error
	// SweepExpired 移除已过期且未使用的卡密，返回清理数量
	SweepExpired(ctx context.Context) (int, error)
}

type cardKeyService struct {
	api  gateway.API
	txns txnService.TransactionService
	now  func() time.Time
}

func NewCardKeyService(api gateway.API, txns txnService.TransactionService) CardKeyService {
	return &cardKeyService{api: api, txns: txns, now: time.Now}
}

func (s *cardKeyService) List(ctx context.Context) ([]model.CardKey, error) {
	return common.LoadCollection[model.CardKey](ctx, s.api, store.KeyCardKeys)
}

func (s *cardKeyService) Generate(ctx context.Context, amount float64, count int, expiresAt time.Time) ([]model.CardKey, error) {
	if amount <= 0 {
		return nil, ErrBadAmount
	}
	if count < 1 {
		count = 1
	}

	keys, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]model.CardKey, 0, count)
	for i := 0; i < count; i++ {
		code, err := security.NewCardCode()
		if err != nil {
			return nil, err
		}
		created = append(created, model.CardKey{
			ID:        uuid.NewString(),
			Code:      code,
			Amount:    utils.Round2(amount),
			CreatedAt: s.now(),
			ExpiresAt: expiresAt,
		})
	}

	keys = append(keys, created...)
	if err := common.SaveCollection(ctx, s.api, store.KeyCardKeys, keys); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *cardKeyService) Redeem(ctx context.Context, code, userID string) (float64, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	for i := range keys {
		if keys[i].Code != code {
			continue
		}
		if keys[i].IsUsed {
			return 0, ErrKeyUsed
		}
		if keys[i].Expired(s.now()) {
			return 0, ErrKeyExpired
		}

		// 先标记已用并落盘，再入账：宁可出现一张已用未入账的卡密，
		// 也不能让同一卡密充值两次
		now := s.now()
		keys[i].IsUsed = true
		keys[i].UsedAt = &now
		keys[i].UsedBy = userID
		if err := common.SaveCollection(ctx, s.api, store.KeyCardKeys, keys); err != nil {
			return 0, err
		}

		if err := s.txns.Record(ctx, &txnModel.Transaction{
			UserID:      userID,
			Amount:      keys[i].Amount,
			Type:        txnModel.TypeRecharge,
			Description: "卡密充值",
			RelatedID:   keys[i].ID,
		}); err != nil {
			return 0, err
		}
		return keys[i].Amount, nil
	}
	return 0, ErrKeyNotFound
}

func (s *cardKeyService) Delete(ctx context.Context, id string) error {
	keys, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := keys[:0]
	for _, k := range keys {
		if k.ID != id {
			kept = append(kept, k)
		}
	}
	if len(kept) == len(keys) {
		return ErrKeyNotFound
	}
	return common.SaveCollection(ctx, s.api, store.KeyCardKeys, kept)
}

func (s *cardKeyService) SweepExpired(ctx context.Context) (int, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	kept := keys[:0]
	for _, k := range keys {
		// 已使用的保留作为流水凭据
		if k.IsUsed || !k.Expired(now) {
			kept = append(kept, k)
		}
	}
	removed := len(keys) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, common.SaveCollection(ctx, s.api, store.KeyCardKeys, kept)
}
