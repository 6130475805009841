package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
)

func TestGetOrInitShopSeedsDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	require.Len(t, sp.Kitchens, 1)
	assert.True(t, sp.Kitchens[0].IsDefault)
	assert.Empty(t, sp.Kitchens[0].Admins)
	assert.Equal(t, sp.Kitchens[0].ID, sp.CurrentKitchenID)

	// 再次调用不应产生副作用
	again, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	assert.Equal(t, sp, again)
}

func TestGetOrInitShopRecoversCorruptData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 结构残缺：没有任何厨房
	require.NoError(t, env.store.Set("shopInfo", &shop.Shop{ID: "shop_001"}))

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	require.Len(t, sp.Kitchens, 1)
	assert.True(t, sp.Kitchens[0].IsDefault)
}

func TestCheckIsAdminBootstrapsFirstAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.login(t, "Alice", "open_alice")
	isAdmin, err := env.registry.CheckIsAdmin(ctx, alice)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	require.Len(t, sp.Kitchens[0].Admins, 1)
	assert.Equal(t, "Alice", sp.Kitchens[0].Admins[0].NickName)
	assert.Equal(t, "open_alice", sp.Kitchens[0].Admins[0].OpenID)
	assert.NotEmpty(t, sp.Kitchens[0].Admins[0].AddTime)
}

func TestCheckIsAdminRequiresAuthenticatedUser(t *testing.T) {
	env := newTestEnv(t)
	isAdmin, err := env.registry.CheckIsAdmin(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, isAdmin)
}

func TestIsAdminMatchesOpenIDOverNickname(t *testing.T) {
	k := &shop.Kitchen{Admins: []shop.Admin{
		{NickName: "Alice", OpenID: "open_alice"},
		{NickName: "Legacy"}, // 老数据，没有 openid
	}}

	// 同昵称不同 openid 的冒充者不应通过
	assert.False(t, IsAdmin(&user.Profile{NickName: "Alice", OpenID: "open_mallory"}, k))
	assert.True(t, IsAdmin(&user.Profile{NickName: "Alice", OpenID: "open_alice"}, k))
	// 老数据按昵称兜底
	assert.True(t, IsAdmin(&user.Profile{NickName: "Legacy", OpenID: "open_legacy"}, k))
	assert.False(t, IsAdmin(nil, k))
}

func TestSwitchKitchenIgnoresUnknownID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	origin := sp.CurrentKitchenID

	require.NoError(t, env.registry.SwitchKitchen(ctx, "kitchen_nope"))

	sp, err = env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	assert.Equal(t, origin, sp.CurrentKitchenID)
}

func TestKitchenLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")

	k, err := env.registry.AddKitchen(ctx, "奶奶家", admin)
	require.NoError(t, err)
	require.Len(t, k.Admins, 1, "创建者应自动成为管理员")

	require.NoError(t, env.registry.SwitchKitchen(ctx, k.ID))
	cur, err := env.registry.CurrentKitchen(ctx)
	require.NoError(t, err)
	assert.Equal(t, k.ID, cur.ID)

	require.NoError(t, env.registry.RenameKitchen(ctx, k.ID, "外婆家", admin))

	// 删除当前厨房后回退到默认厨房
	require.NoError(t, env.registry.DeleteKitchen(ctx, k.ID, admin))
	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	require.Len(t, sp.Kitchens, 1)
	assert.Equal(t, sp.DefaultKitchen().ID, sp.CurrentKitchenID)
}

func TestDeleteDefaultKitchenRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)

	err = env.registry.DeleteKitchen(ctx, sp.DefaultKitchen().ID, admin)
	assert.ErrorIs(t, err, errs.ErrDefaultKitchen)
}

func TestKitchenMutationRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.becomeAdmin(t, "Alice", "open_alice")

	bob := &user.Profile{NickName: "Bob", OpenID: "open_bob"}
	_, err := env.registry.AddKitchen(ctx, "外人的厨房", bob)
	assert.ErrorIs(t, err, errs.ErrPermission)
}

func TestAdminManagement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")

	sp, err := env.registry.GetOrInitShop(ctx)
	require.NoError(t, err)
	kid := sp.DefaultKitchen().ID

	require.NoError(t, env.registry.AddAdmin(ctx, kid, shop.Admin{NickName: "Bob", OpenID: "open_bob"}, admin))
	err = env.registry.AddAdmin(ctx, kid, shop.Admin{NickName: "Bob2", OpenID: "open_bob"}, admin)
	assert.ErrorIs(t, err, errs.ErrDuplicateName)

	require.NoError(t, env.registry.RemoveAdmin(ctx, kid, "open_bob", admin))
	err = env.registry.RemoveAdmin(ctx, kid, "open_bob", admin)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
