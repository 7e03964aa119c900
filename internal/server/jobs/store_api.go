package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"video_promo_shop/internal/gateway"
	"video_promo_shop/pkg/store"
)

// storeAPI 把服务端集合存储适配成领域服务需要的数据访问接口，
// 让过期清理逻辑在服务端直接复用领域服务。
type storeAPI struct {
	store store.Store
}

func (a *storeAPI) GetData(_ context.Context, key string) (json.RawMessage, gateway.Freshness, error) {
	raw, err := a.store.Read(key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, gateway.FreshRemote, nil
	}
	if err != nil {
		return nil, gateway.FreshRemote, err
	}
	return raw, gateway.FreshRemote, nil
}

func (a *storeAPI) SaveData(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return a.store.Write(key, raw)
}

func (a *storeAPI) DeleteData(_ context.Context, key string) error {
	return a.store.Delete(key)
}

func (a *storeAPI) Keys(_ context.Context) ([]string, gateway.Freshness, error) {
	keys, err := a.store.Keys()
	return keys, gateway.FreshRemote, err
}
