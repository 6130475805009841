package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
)

func TestNotificationDefaultOn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.True(t, env.settings.NotificationEnabled(ctx))

	require.NoError(t, env.settings.SetNotification(ctx, false))
	assert.False(t, env.settings.NotificationEnabled(ctx))

	require.NoError(t, env.settings.SetNotification(ctx, true))
	assert.True(t, env.settings.NotificationEnabled(ctx))
}

func TestSnapshotRoundtrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")

	env.addRecipe(t, "宫保鸡丁", "cat_002", 26, admin)
	_, err := env.catalog.AddCategory(ctx, "私房菜", "", admin)
	require.NoError(t, err)

	snap, err := env.snapshot.Export(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.ShopInfo)
	assert.Len(t, snap.Recipes, 1)
	assert.Len(t, snap.Categories, 1)
	assert.NotEmpty(t, snap.ExportTime)

	// 导入到一套全新的环境
	other := newTestEnv(t)
	otherAdmin := other.becomeAdmin(t, "Alice", "open_alice")
	require.NoError(t, other.snapshot.Import(ctx, snap, otherAdmin))

	recipes, err := other.catalog.ListRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "宫保鸡丁", recipes[0].Name)
}

func TestSnapshotImportRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.becomeAdmin(t, "Alice", "open_alice")

	bob := &user.Profile{NickName: "Bob", OpenID: "open_bob"}
	err := env.snapshot.Import(ctx, &Snapshot{}, bob)
	assert.ErrorIs(t, err, errs.ErrPermission)
}

func TestSnapshotImportOnlyOverwritesCarriedSections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	env.addRecipe(t, "保留菜", "cat_001", 12, admin)

	// 快照里只带分类，菜谱不应被动
	require.NoError(t, env.snapshot.Import(ctx, &Snapshot{
		Categories: []category.Category{{ID: "cat_new", Name: "新分类"}},
	}, admin))

	cats, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "新分类", cats[0].Name)

	recipes, err := env.catalog.ListRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "保留菜", recipes[0].Name)
}
