package service

import (
	"context"
	"fmt"

	"github.com/example/homekitchen/internal/datamodels/cart"
	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/errs"
)

// CartService 购物车。硬性不变式：同一时刻车内所有行属于同一个厨房，
// 且只在 AddItem 这一个入口处强制执行
type CartService struct {
	carts    cart.Repository
	catalog  *CatalogService
	registry *RegistryService
	orders   *OrderService
}

// NewCartService 创建购物车服务
func NewCartService(carts cart.Repository, catalog *CatalogService, registry *RegistryService, orders *OrderService) *CartService {
	return &CartService{carts: carts, catalog: catalog, registry: registry, orders: orders}
}

// Items 车内行与合计
func (s *CartService) Items(ctx context.Context) ([]cart.Item, cart.Totals, error) {
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, cart.Totals{}, err
	}
	return items, cart.Sum(items), nil
}

// AddItem 加购。车里是别的厨房的菜时先整车清空；
// 已有同菜谱行则数量 +1，否则按当前价格/名称/图片快照新增一行
func (s *CartService) AddItem(ctx context.Context, recipeID string) ([]cart.Item, error) {
	k, err := s.registry.CurrentKitchen(ctx)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, errs.ErrMissingKitchen
	}
	r, err := s.catalog.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !r.InKitchen(k.ID) {
		return nil, errs.NotFound("菜谱", recipeID)
	}
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 && items[0].KitchenID != "" && items[0].KitchenID != k.ID {
		items = nil
	}
	found := false
	for i := range items {
		if items[i].RecipeID == recipeID {
			items[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		items = append(items, cart.Item{
			RecipeID:    r.ID,
			RecipeName:  r.Name,
			RecipeImage: r.Image,
			Price:       r.Price,
			Quantity:    1,
			KitchenID:   k.ID,
		})
	}
	if err := s.carts.Replace(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// IncrementQuantity 指定行数量 +1
func (s *CartService) IncrementQuantity(ctx context.Context, index int) ([]cart.Item, error) {
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, errs.NotFound("购物车条目", fmt.Sprint(index))
	}
	items[index].Quantity++
	if err := s.carts.Replace(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementQuantity 指定行数量 -1。数量已为 1 时不直接删：
// 未确认返回 ErrConfirmRemove（不动数据），确认后才移除该行
func (s *CartService) DecrementQuantity(ctx context.Context, index int, confirmed bool) ([]cart.Item, error) {
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, errs.NotFound("购物车条目", fmt.Sprint(index))
	}
	if items[index].Quantity > 1 {
		items[index].Quantity--
	} else {
		if !confirmed {
			return nil, errs.ErrConfirmRemove
		}
		items = append(items[:index], items[index+1:]...)
	}
	if err := s.carts.Replace(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem 直接移除指定行
func (s *CartService) RemoveItem(ctx context.Context, index int) ([]cart.Item, error) {
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, errs.NotFound("购物车条目", fmt.Sprint(index))
	}
	items = append(items[:index], items[index+1:]...)
	if err := s.carts.Replace(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Clear 无条件清空
func (s *CartService) Clear(ctx context.Context) error {
	return s.carts.Clear(ctx)
}

// Checkout 结算：生成 pending 订单并清空购物车。
// 两步是先后两次写，没有回滚：订单已落、清车失败时订单保留，错误上报
func (s *CartService) Checkout(ctx context.Context, remark string) (*order.Order, error) {
	items, err := s.carts.Items(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, errs.ErrEmptyCart
	}
	k, err := s.registry.CurrentKitchen(ctx)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, errs.ErrMissingKitchen
	}
	o, err := s.orders.CreateFromCart(ctx, items, k, remark)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Clear(ctx); err != nil {
		return o, fmt.Errorf("订单已创建但清空购物车失败: %w", err)
	}
	return o, nil
}
