package service

import (
	"context"

	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/util"
)

// Snapshot 全量数据快照，导出/导入用
type Snapshot struct {
	ShopInfo   *shop.Shop          `json:"shopInfo,omitempty"`
	Recipes    []recipe.Recipe     `json:"recipes,omitempty"`
	Orders     []order.Order       `json:"orders,omitempty"`
	Categories []category.Category `json:"categories,omitempty"`
	ExportTime string              `json:"exportTime,omitempty"`
}

// SnapshotService 数据导出与导入
type SnapshotService struct {
	shops      shop.Repository
	categories category.Repository
	recipes    recipe.Repository
	orders     order.Repository
	registry   *RegistryService
}

// NewSnapshotService 创建快照服务
func NewSnapshotService(shops shop.Repository, categories category.Repository, recipes recipe.Repository, orders order.Repository, registry *RegistryService) *SnapshotService {
	return &SnapshotService{
		shops:      shops,
		categories: categories,
		recipes:    recipes,
		orders:     orders,
		registry:   registry,
	}
}

// Export 导出全部数据
func (s *SnapshotService) Export(ctx context.Context) (*Snapshot, error) {
	sp, err := s.shops.Get(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		ShopInfo:   sp,
		Categories: cats,
		Recipes:    recipes,
		Orders:     orders,
		ExportTime: util.NowISO(),
	}, nil
}

// Import 导入快照，只覆盖快照里带的部分。管理员操作
func (s *SnapshotService) Import(ctx context.Context, snap *Snapshot, u *user.Profile) error {
	if err := s.registry.AuthorizeMutation(ctx, u, ""); err != nil {
		return err
	}
	if snap.ShopInfo != nil {
		if err := s.registry.UpdateShop(ctx, snap.ShopInfo); err != nil {
			return err
		}
	}
	if snap.Categories != nil {
		if err := s.categories.ReplaceAll(ctx, snap.Categories); err != nil {
			return err
		}
	}
	if snap.Recipes != nil {
		if err := s.recipes.ReplaceAll(ctx, snap.Recipes); err != nil {
			return err
		}
	}
	if snap.Orders != nil {
		if err := s.orders.ReplaceAll(ctx, snap.Orders); err != nil {
			return err
		}
	}
	return nil
}
