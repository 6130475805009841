package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/kv"
)

type categoryRepo struct {
	store kv.Store
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(store kv.Store) category.Repository {
	return &categoryRepo{store: store}
}

func (r *categoryRepo) List(ctx context.Context) ([]category.Category, error) {
	var list []category.Category
	found, err := r.store.Get(kv.KeyCategories, &list)
	if err != nil {
		zap.L().Warn("read categories failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return list, nil
}

func (r *categoryRepo) ReplaceAll(ctx context.Context, list []category.Category) error {
	if list == nil {
		list = []category.Category{}
	}
	return r.store.Set(kv.KeyCategories, list)
}
