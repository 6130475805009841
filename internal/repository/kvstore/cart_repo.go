package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/cart"
	"github.com/example/homekitchen/internal/kv"
)

type cartRepo struct {
	store kv.Store
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(store kv.Store) cart.Repository {
	return &cartRepo{store: store}
}

func (r *cartRepo) Items(ctx context.Context) ([]cart.Item, error) {
	var items []cart.Item
	found, err := r.store.Get(kv.KeyCart, &items)
	if err != nil {
		zap.L().Warn("read cart failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return items, nil
}

func (r *cartRepo) Replace(ctx context.Context, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	return r.store.Set(kv.KeyCart, items)
}

func (r *cartRepo) Clear(ctx context.Context) error {
	return r.store.Set(kv.KeyCart, []cart.Item{})
}
