package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/kv"
)

// SyncService 云同步客户端：把本地数据按 dataType 整块上传到 syncserver，
// 或者拉回来覆盖本地。全部是尽力而为：网络失败只记日志，本地数据照常
type SyncService struct {
	cfg        config.SyncConfig
	client     *http.Client
	shops      shop.Repository
	categories category.Repository
	recipes    recipe.Repository
	orders     order.Repository
	users      user.Repository
}

// NewSyncService 创建同步客户端；cfg.Enabled 为 false 时所有方法都是空操作
func NewSyncService(cfg config.SyncConfig, shops shop.Repository, categories category.Repository, recipes recipe.Repository, orders order.Repository, users user.Repository) *SyncService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SyncService{
		cfg:        cfg,
		client:     &http.Client{Timeout: timeout},
		shops:      shops,
		categories: categories,
		recipes:    recipes,
		orders:     orders,
		users:      users,
	}
}

// syncEnvelope syncserver 的统一响应格式
type syncEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// SyncableTypes 参与云同步的 dataType
var SyncableTypes = []string{kv.KeyShopInfo, kv.KeyCategories, kv.KeyRecipes, kv.KeyOrders}

func (s *SyncService) openid(ctx context.Context) string {
	p, _ := s.users.Get(ctx)
	if p == nil {
		return ""
	}
	return p.OpenID
}

func (s *SyncService) localData(ctx context.Context, dataType string) (any, error) {
	switch dataType {
	case kv.KeyShopInfo:
		return s.shops.Get(ctx)
	case kv.KeyCategories:
		return s.categories.List(ctx)
	case kv.KeyRecipes:
		return s.recipes.List(ctx)
	case kv.KeyOrders:
		return s.orders.List(ctx)
	}
	return nil, fmt.Errorf("unknown dataType %q", dataType)
}

// QueueUpload 异步上传一个 dataType，立即返回，不阻塞调用方
func (s *SyncService) QueueUpload(ctx context.Context, dataType string) {
	if s == nil || !s.cfg.Enabled {
		return
	}
	go func() {
		if err := s.Upload(context.Background(), dataType); err != nil {
			zap.L().Warn("cloud sync upload failed", zap.String("dataType", dataType), zap.Error(err))
		}
	}()
}

// Upload 同步上传一个 dataType
func (s *SyncService) Upload(ctx context.Context, dataType string) error {
	if !s.cfg.Enabled {
		return nil
	}
	openid := s.openid(ctx)
	if openid == "" {
		return fmt.Errorf("no openid, skip upload")
	}
	data, err := s.localData(ctx, dataType)
	if err != nil {
		return err
	}
	body, err := json.Marshal(map[string]any{
		"openid":   openid,
		"dataType": dataType,
		"data":     data,
	})
	if err != nil {
		return err
	}
	env, err := s.post(ctx, "/api/data/upload", body)
	if err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("upload rejected: %s", env.Message)
	}
	return nil
}

// UploadAll 上传全部 dataType，逐个尽力而为，返回第一个错误
func (s *SyncService) UploadAll(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	var first error
	for _, dt := range SyncableTypes {
		if err := s.Upload(ctx, dt); err != nil {
			zap.L().Warn("cloud sync upload failed", zap.String("dataType", dt), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Download 拉取一个 dataType 并覆盖本地。云端没有或失败时本地数据不动
func (s *SyncService) Download(ctx context.Context, dataType string) error {
	if !s.cfg.Enabled {
		return nil
	}
	openid := s.openid(ctx)
	if openid == "" {
		return fmt.Errorf("no openid, skip download")
	}
	body, err := json.Marshal(map[string]any{
		"openid":   openid,
		"dataType": dataType,
	})
	if err != nil {
		return err
	}
	env, err := s.post(ctx, "/api/data/download", body)
	if err != nil {
		return err
	}
	if !env.Success || len(env.Data) == 0 {
		return fmt.Errorf("download failed: %s", env.Message)
	}
	return s.apply(ctx, dataType, env.Data)
}

// DownloadAll 拉取全部 dataType，任何一项失败都不影响其它项
func (s *SyncService) DownloadAll(ctx context.Context) error {
	if !s.cfg.Enabled {
		return nil
	}
	var first error
	for _, dt := range SyncableTypes {
		if err := s.Download(ctx, dt); err != nil {
			zap.L().Warn("cloud sync download failed", zap.String("dataType", dt), zap.Error(err))
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func (s *SyncService) apply(ctx context.Context, dataType string, raw json.RawMessage) error {
	switch dataType {
	case kv.KeyShopInfo:
		var sp shop.Shop
		if err := json.Unmarshal(raw, &sp); err != nil {
			return err
		}
		return s.shops.Save(ctx, &sp)
	case kv.KeyCategories:
		var list []category.Category
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		return s.categories.ReplaceAll(ctx, list)
	case kv.KeyRecipes:
		var list []recipe.Recipe
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		return s.recipes.ReplaceAll(ctx, list)
	case kv.KeyOrders:
		var list []order.Order
		if err := json.Unmarshal(raw, &list); err != nil {
			return err
		}
		return s.orders.ReplaceAll(ctx, list)
	}
	return fmt.Errorf("unknown dataType %q", dataType)
}

func (s *SyncService) post(ctx context.Context, path string, body []byte) (*syncEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var env syncEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
