package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/kv"
	"github.com/example/homekitchen/internal/repository/kvstore"
)

// fakeSyncServer 用内存 map 模拟 syncserver 的上传/下载接口
func fakeSyncServer(t *testing.T) (*httptest.Server, map[string]json.RawMessage) {
	t.Helper()
	blobs := make(map[string]json.RawMessage)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/data/upload", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OpenID   string          `json:"openid"`
			DataType string          `json:"dataType"`
			Data     json.RawMessage `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		blobs[req.OpenID+"/"+req.DataType] = req.Data
		json.NewEncoder(w).Encode(map[string]any{"success": true})
	})
	mux.HandleFunc("/api/data/download", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OpenID   string `json:"openid"`
			DataType string `json:"dataType"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		data, ok := blobs[req.OpenID+"/"+req.DataType]
		if !ok {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "数据不存在"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, blobs
}

func newSyncEnv(t *testing.T, baseURL string, enabled bool) (*testEnv, *SyncService) {
	t.Helper()
	env := newTestEnv(t)
	sync := NewSyncService(config.SyncConfig{
		Enabled:        enabled,
		BaseURL:        baseURL,
		TimeoutSeconds: 5,
	}, kvstore.NewShopRepository(env.store), kvstore.NewCategoryRepository(env.store),
		kvstore.NewRecipeRepository(env.store), kvstore.NewOrderRepository(env.store), env.users)
	return env, sync
}

func TestSyncUploadDownloadRoundtrip(t *testing.T) {
	srv, blobs := fakeSyncServer(t)
	ctx := context.Background()

	env, sync := newSyncEnv(t, srv.URL, true)
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	env.addRecipe(t, "回锅肉", "cat_002", 28, admin)

	require.NoError(t, sync.Upload(ctx, kv.KeyRecipes))
	assert.Contains(t, blobs, "open_alice/recipes")

	// 另一台设备（同一 openid）把数据拉下来
	other, otherSync := newSyncEnv(t, srv.URL, true)
	other.login(t, "Alice", "open_alice")
	require.NoError(t, otherSync.Download(ctx, kv.KeyRecipes))

	list, err := other.catalog.ListRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "回锅肉", list[0].Name)
}

func TestSyncDisabledIsNoop(t *testing.T) {
	srv, blobs := fakeSyncServer(t)
	ctx := context.Background()

	env, sync := newSyncEnv(t, srv.URL, false)
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	env.addRecipe(t, "不上云的菜", "cat_001", 10, admin)

	require.NoError(t, sync.Upload(ctx, kv.KeyRecipes))
	require.NoError(t, sync.UploadAll(ctx))
	assert.Empty(t, blobs)
}

func TestSyncUploadRequiresOpenID(t *testing.T) {
	srv, _ := fakeSyncServer(t)

	_, sync := newSyncEnv(t, srv.URL, true)
	err := sync.Upload(context.Background(), kv.KeyRecipes)
	assert.Error(t, err, "未登录没有 openid，上传应报错")
}

func TestSyncDownloadMissingLeavesLocalIntact(t *testing.T) {
	srv, _ := fakeSyncServer(t)
	ctx := context.Background()

	env, sync := newSyncEnv(t, srv.URL, true)
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	env.addRecipe(t, "本地菜", "cat_001", 9, admin)

	err := sync.Download(ctx, kv.KeyRecipes)
	assert.Error(t, err)

	list, err := env.catalog.ListRecipes(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "本地菜", list[0].Name)

	// 把分类也拉一遍，同样不影响本地
	require.Error(t, sync.DownloadAll(ctx))
}

func TestSyncCategoriesRoundtrip(t *testing.T) {
	srv, _ := fakeSyncServer(t)
	ctx := context.Background()

	env, sync := newSyncEnv(t, srv.URL, true)
	admin := env.becomeAdmin(t, "Alice", "open_alice")
	_, err := env.catalog.AddCategory(ctx, "家乡味", "🏠", admin)
	require.NoError(t, err)

	require.NoError(t, sync.Upload(ctx, kv.KeyCategories))

	other, otherSync := newSyncEnv(t, srv.URL, true)
	other.login(t, "Alice", "open_alice")
	require.NoError(t, otherSync.Download(ctx, kv.KeyCategories))

	var cats []category.Category
	found, err := other.store.Get(kv.KeyCategories, &cats)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, cats, 1)
	assert.Equal(t, "家乡味", cats[0].Name)
}
