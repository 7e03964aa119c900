package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	catalogService "video_promo_shop/internal/domain/catalog/service"
	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/domain/order/model"
	txnModel "video_promo_shop/internal/domain/transaction/model"
	txnService "video_promo_shop/internal/domain/transaction/service"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
	"video_promo_shop/pkg/utils"
)

var ErrOrderNotFound = errors.New("订单不存在")

// CreateOrderInput 下单入参
type CreateOrderInput struct {
	UserID   string
	Platform string
	VideoURL string
	// Services 服务标识 → 购买数量
	Services map[string]int
}

type OrderService interface {
	// Create 下单：按目录单价计算总价（逐项数量×单价求和，保留两位小数），
	// 扣款成功后订单以 waiting 状态落盘
	Create(ctx context.Context, in CreateOrderInput) (*model.Order, error)
	Get(ctx context.Context, orderID string) (*model.Order, error)
	List(ctx context.Context) ([]model.Order, error)
	ListByUser(ctx context.Context, userID string) ([]model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, next model.Status) (*model.Order, error)
	UpdateProgress(ctx context.Context, orderID string, progress int) (*model.Order, error)
}

type orderService struct {
	api     gateway.API
	catalog catalogService.CatalogService
	txns    txnService.TransactionService
}

func NewOrderService(api gateway.API, catalog catalogService.CatalogService, txns txnService.TransactionService) OrderService {
	return &orderService{api: api, catalog: catalog, txns: txns}
}

func (s *orderService) Create(ctx context.Context, in CreateOrderInput) (*model.Order, error) {
	errs := common.ValidationErrors{}
	if in.UserID == "" {
		errs.Add("userId", "用户不能为空")
	}
	if strings.TrimSpace(in.VideoURL) == "" {
		errs.Add("videoUrl", "视频链接不能为空")
	}
	if len(in.Services) == 0 {
		errs.Add("services", "至少选择一项服务")
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	var total float64
	for key, qty := range in.Services {
		item, err := s.catalog.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("服务 %s: %w", key, err)
		}
		if err := s.catalog.CheckQuantity(item, qty); err != nil {
			return nil, err
		}
		total += float64(qty) * item.Price
	}
	total = utils.Round2(total)

	order := &model.Order{
		OrderID:     uuid.NewString(),
		UserID:      in.UserID,
		Platform:    in.Platform,
		VideoURL:    in.VideoURL,
		Services:    in.Services,
		TotalAmount: total,
		Status:      model.StatusWaiting,
		Progress:    0,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	// 扣款在前：余额不足时订单不落盘
	if err := s.txns.Record(ctx, &txnModel.Transaction{
		UserID:      in.UserID,
		Amount:      -total,
		Type:        txnModel.TypeConsumption,
		Description: fmt.Sprintf("推广订单 %s", order.OrderID),
		RelatedID:   order.OrderID,
	}); err != nil {
		return nil, err
	}

	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	orders = append(orders, *order)
	if err := common.SaveCollection(ctx, s.api, store.KeyOrders, orders); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Get(ctx context.Context, orderID string) (*model.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID == orderID {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	return common.LoadCollection[model.Order](ctx, s.api, store.KeyOrders)
}

func (s *orderService) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	mine := make([]model.Order, 0)
	for _, o := range orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	return mine, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, next model.Status) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(o *model.Order) error {
		return o.Transition(next)
	})
}

func (s *orderService) UpdateProgress(ctx context.Context, orderID string, progress int) (*model.Order, error) {
	return s.mutate(ctx, orderID, func(o *model.Order) error {
		return o.SetProgress(progress)
	})
}

// mutate 读出整个集合，原地修改目标订单后整体回写
func (s *orderService) mutate(ctx context.Context, orderID string, fn func(*model.Order) error) (*model.Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].OrderID != orderID {
			continue
		}
		if err := fn(&orders[i]); err != nil {
			return nil, err
		}
		if err := common.SaveCollection(ctx, s.api, store.KeyOrders, orders); err != nil {
			return nil, err
		}
		return &orders[i], nil
	}
	return nil, ErrOrderNotFound
}
