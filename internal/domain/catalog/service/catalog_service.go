package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"video_promo_shop/internal/domain/catalog/model"
	"video_promo_shop/internal/domain/common"
	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

var ErrServiceNotFound = errors.New("服务不存在")

type CatalogService interface {
	List(ctx context.Context) ([]model.Service, error)
	Get(ctx context.Context, key string) (*model.Service, error)
	// Upsert 按 key 插入或整体替换一个服务条目
	Upsert(ctx context.Context, svc *model.Service) error
	Delete(ctx context.Context, key string) error
	// CheckQuantity 校验购买数量是否落在服务允许的区间内
	CheckQuantity(svc *model.Service, quantity int) error
}

type catalogService struct {
	api gateway.API
}

func NewCatalogService(api gateway.API) CatalogService {
	return &catalogService{api: api}
}

func (s *catalogService) List(ctx context.Context) ([]model.Service, error) {
	return common.LoadCollection[model.Service](ctx, s.api, store.KeyServices)
}

func (s *catalogService) Get(ctx context.Context, key string) (*model.Service, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Key == key {
			return &items[i], nil
		}
	}
	return nil, ErrServiceNotFound
}

func (s *catalogService) Upsert(ctx context.Context, svc *model.Service) error {
	errs := common.ValidationErrors{}
	if strings.TrimSpace(svc.Key) == "" {
		errs.Add("key", "服务标识不能为空")
	}
	if strings.TrimSpace(svc.Name) == "" {
		errs.Add("name", "服务名称不能为空")
	}
	if svc.Price < 0 {
		errs.Add("price", "单价不能为负数")
	}
	if svc.MinPurchase < 1 {
		errs.Add("minPurchase", "最低购买数量不能小于 1")
	}
	if svc.MaxPurchase < 0 {
		errs.Add("maxPurchase", "最高购买数量不能为负数")
	}
	if svc.MaxPurchase > 0 && svc.MaxPurchase < svc.MinPurchase {
		errs.Add("maxPurchase", "最高购买数量不能小于最低购买数量")
	}
	if err := errs.OrNil(); err != nil {
		return err
	}

	items, err := s.List(ctx)
	if err != nil {
		return err
	}
	for i := range items {
		if items[i].Key == svc.Key {
			items[i] = *svc
			return common.SaveCollection(ctx, s.api, store.KeyServices, items)
		}
	}
	items = append(items, *svc)
	return common.SaveCollection(ctx, s.api, store.KeyServices, items)
}

func (s *catalogService) Delete(ctx context.Context, key string) error {
	items, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.Key != key {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return ErrServiceNotFound
	}
	return common.SaveCollection(ctx, s.api, store.KeyServices, kept)
}

func (s *catalogService) CheckQuantity(svc *model.Service, quantity int) error {
	if quantity < svc.MinPurchase {
		return fmt.Errorf("%s 最低购买数量为 %d", svc.Name, svc.MinPurchase)
	}
	if svc.MaxPurchase > 0 && quantity > svc.MaxPurchase {
		return fmt.Errorf("%s 最高购买数量为 %d", svc.Name, svc.MaxPurchase)
	}
	return nil
}
