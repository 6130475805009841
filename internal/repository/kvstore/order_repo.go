package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/kv"
)

type orderRepo struct {
	store kv.Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(store kv.Store) order.Repository {
	return &orderRepo{store: store}
}

func (r *orderRepo) List(ctx context.Context) ([]order.Order, error) {
	var list []order.Order
	found, err := r.store.Get(kv.KeyOrders, &list)
	if err != nil {
		zap.L().Warn("read orders failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return list, nil
}

func (r *orderRepo) ReplaceAll(ctx context.Context, list []order.Order) error {
	if list == nil {
		list = []order.Order{}
	}
	return r.store.Set(kv.KeyOrders, list)
}
