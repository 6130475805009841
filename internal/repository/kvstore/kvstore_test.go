package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/errs"
	"github.com/example/homekitchen/internal/kv"
)

func TestReadFailureDegradesToEmpty(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	recipes := NewRecipeRepository(store)
	require.NoError(t, recipes.ReplaceAll(ctx, []recipe.Recipe{{ID: "r1", Name: "红烧肉"}}))

	// 读故障时返回空列表而不是错误，界面可以继续渲染
	store.FailReads = true
	list, err := recipes.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	shops := NewShopRepository(store)
	sp, err := shops.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, sp)

	users := NewUserRepository(store)
	p, err := users.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestWriteFailureSurfaces(t *testing.T) {
	store := kv.NewMemory()
	store.FailWrites = true
	ctx := context.Background()

	recipes := NewRecipeRepository(store)
	err := recipes.ReplaceAll(ctx, nil)
	assert.True(t, errs.IsStorage(err))

	carts := NewCartRepository(store)
	assert.True(t, errs.IsStorage(carts.Clear(ctx)))
}
