package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/kv"
	"github.com/example/homekitchen/internal/repository/kvstore"
)

// testEnv 全套服务跑在内存存储上
type testEnv struct {
	store    *kv.Memory
	users    user.Repository
	registry *RegistryService
	catalog  *CatalogService
	cart     *CartService
	orders   *OrderService
	settings *SettingsService
	snapshot *SnapshotService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := kv.NewMemory()
	shopRepo := kvstore.NewShopRepository(store)
	categoryRepo := kvstore.NewCategoryRepository(store)
	recipeRepo := kvstore.NewRecipeRepository(store)
	cartRepo := kvstore.NewCartRepository(store)
	orderRepo := kvstore.NewOrderRepository(store)
	userRepo := kvstore.NewUserRepository(store)

	registry := NewRegistryService(shopRepo, userRepo)
	catalog := NewCatalogService(categoryRepo, recipeRepo, registry)
	settings := NewSettingsService(store)
	orders := NewOrderService(orderRepo, registry, settings, nil, nil)
	cartSvc := NewCartService(cartRepo, catalog, registry, orders)
	snapshot := NewSnapshotService(shopRepo, categoryRepo, recipeRepo, orderRepo, registry)

	return &testEnv{
		store:    store,
		users:    userRepo,
		registry: registry,
		catalog:  catalog,
		cart:     cartSvc,
		orders:   orders,
		settings: settings,
		snapshot: snapshot,
	}
}

// login 把资料写入本地缓存，模拟已登录用户
func (e *testEnv) login(t *testing.T, nickName, openid string) *user.Profile {
	t.Helper()
	p := &user.Profile{NickName: nickName, OpenID: openid}
	require.NoError(t, e.users.Save(context.Background(), p))
	return p
}

// becomeAdmin 通过默认厨房的首管理员自举成为管理员
func (e *testEnv) becomeAdmin(t *testing.T, nickName, openid string) *user.Profile {
	t.Helper()
	p := e.login(t, nickName, openid)
	isAdmin, err := e.registry.CheckIsAdmin(context.Background(), p)
	require.NoError(t, err)
	require.True(t, isAdmin)
	return p
}

// addRecipe 以管理员身份添加一个菜谱
func (e *testEnv) addRecipe(t *testing.T, name, categoryID string, price float64, admin *user.Profile) *recipe.Recipe {
	t.Helper()
	r, err := e.catalog.SaveRecipe(context.Background(), &recipe.Recipe{
		Name:       name,
		CategoryID: categoryID,
		Price:      price,
	}, "", admin)
	require.NoError(t, err)
	return r
}
