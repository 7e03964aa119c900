package common

import (
	"context"
	"encoding/json"
	"fmt"

	"video_promo_shop/internal/gateway"
)

// LoadCollection 通过网关读取整个集合并反序列化。
// 没有数据按空集合处理，坏 JSON 视为存储层错误向上抛。
func LoadCollection[T any](ctx context.Context, api gateway.API, key string) ([]T, error) {
	raw, _, err := api.GetData(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", key, err)
	}
	return items, nil
}

// SaveCollection 整体回写集合（存储层没有局部更新，见数据模型约定）
func SaveCollection[T any](ctx context.Context, api gateway.API, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return api.SaveData(ctx, key, items)
}
