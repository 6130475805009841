package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/kv"
)

type recipeRepo struct {
	store kv.Store
}

// NewRecipeRepository 创建菜谱仓储
func NewRecipeRepository(store kv.Store) recipe.Repository {
	return &recipeRepo{store: store}
}

func (r *recipeRepo) List(ctx context.Context) ([]recipe.Recipe, error) {
	var list []recipe.Recipe
	found, err := r.store.Get(kv.KeyRecipes, &list)
	if err != nil {
		zap.L().Warn("read recipes failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return list, nil
}

func (r *recipeRepo) ReplaceAll(ctx context.Context, list []recipe.Recipe) error {
	if list == nil {
		list = []recipe.Recipe{}
	}
	return r.store.Set(kv.KeyRecipes, list)
}
