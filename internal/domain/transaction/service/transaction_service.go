package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/domain/transaction/model"
	userService "video_promo_shop/internal/domain/user/service"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/utils"
)

var ErrInvalidType = errors.New("非法的交易类型")

type TransactionService interface {
	// Record 记账：负数金额先做余额充足性检查，检查不过任何记录都不落盘
	Record(ctx context.Context, txn *model.Transaction) error
	ListByUser(ctx context.Context, userID string) ([]model.Transaction, error)
	// History 按时间倒序分页返回某用户的流水
	History(ctx context.Context, userID string, p *utils.Pagination) (*utils.PageResult, error)
}

type transactionService struct {
	api   gateway.API
	users userService.UserService
}

func NewTransactionService(api gateway.API, users userService.UserService) TransactionService {
	return &transactionService{api: api, users: users}
}

func (s *transactionService) Record(ctx context.Context, txn *model.Transaction) error {
	if !model.ValidType(txn.Type) {
		return ErrInvalidType
	}
	txn.Amount = utils.Round2(txn.Amount)

	// 余额先行：扣款前校验充足性，充值直接入账。
	// 余额调整失败时流水不写入，保证流水与余额一致。
	if _, err := s.users.AdjustBalance(ctx, txn.UserID, txn.Amount); err != nil {
		return err
	}

	if txn.ID == "" {
		txn.ID = uuid.NewString()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	all, err := common.LoadCollection[model.Transaction](ctx, s.api, store.KeyTransactions)
	if err != nil {
		return err
	}
	all = append(all, *txn)
	if err := common.SaveCollection(ctx, s.api, store.KeyTransactions, all); err != nil {
		return err
	}

	mine, err := common.LoadCollection[model.Transaction](ctx, s.api, model.UserKey(txn.UserID))
	if err != nil {
		return err
	}
	mine = append(mine, *txn)
	return common.SaveCollection(ctx, s.api, model.UserKey(txn.UserID), mine)
}

func (s *transactionService) ListByUser(ctx context.Context, userID string) ([]model.Transaction, error) {
	return common.LoadCollection[model.Transaction](ctx, s.api, model.UserKey(userID))
}

func (s *transactionService) History(ctx context.Context, userID string, p *utils.Pagination) (*utils.PageResult, error) {
	txns, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(txns, func(i, j int) bool {
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})

	start, end := p.Bounds(len(txns))
	page := txns[start:end]

	return &utils.PageResult{
		List:  page,
		Total: int64(len(txns)),
		Page:  p.Page,
		Limit: p.Limit,
	}, nil
}
