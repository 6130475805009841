// Package kvstore 基于本地键值存储实现各仓储接口。
// 读失败统一降级为默认值（宁可展示空列表也不白屏），写失败原样上报。
package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/kv"
)

type shopRepo struct {
	store kv.Store
}

// NewShopRepository 创建店铺仓储
func NewShopRepository(store kv.Store) shop.Repository {
	return &shopRepo{store: store}
}

func (r *shopRepo) Get(ctx context.Context) (*shop.Shop, error) {
	var s shop.Shop
	found, err := r.store.Get(kv.KeyShopInfo, &s)
	if err != nil {
		zap.L().Warn("read shopInfo failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return &s, nil
}

func (r *shopRepo) Save(ctx context.Context, s *shop.Shop) error {
	return r.store.Set(kv.KeyShopInfo, s)
}
