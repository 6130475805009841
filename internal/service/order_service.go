package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/homekitchen/internal/datamodels/cart"
	"github.com/example/homekitchen/internal/datamodels/order"
	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
	"github.com/example/homekitchen/internal/kv"
	"github.com/example/homekitchen/internal/util"
)

// OrderNotifier 订单事件通知旁路，失败不影响主流程
type OrderNotifier interface {
	NotifyOrder(event string, o *order.Order)
}

// OrderService 订单账本：创建、查询、状态流转
type OrderService struct {
	orders   order.Repository
	registry *RegistryService
	settings *SettingsService
	notifier OrderNotifier
	sync     *SyncService
}

// NewOrderService 创建订单服务。notifier / sync 可以为 nil
func NewOrderService(orders order.Repository, registry *RegistryService, settings *SettingsService, notifier OrderNotifier, sync *SyncService) *OrderService {
	return &OrderService{
		orders:   orders,
		registry: registry,
		settings: settings,
		notifier: notifier,
		sync:     sync,
	}
}

// CreateFromCart 由购物车快照生成订单并插到账本最前面。
// 总价在这里算一次，之后不再重算
func (s *OrderService) CreateFromCart(ctx context.Context, items []cart.Item, k *shop.Kitchen, remark string) (*order.Order, error) {
	if len(items) == 0 {
		return nil, errs.ErrEmptyCart
	}
	if k == nil {
		return nil, errs.ErrMissingKitchen
	}
	now := util.NowISO()
	o := order.Order{
		ID:          util.NewID(),
		KitchenID:   k.ID,
		KitchenName: k.Name,
		Items:       make([]order.Item, 0, len(items)),
		Status:      order.StatusPending,
		Remark:      remark,
		CreateTime:  now,
		UpdateTime:  now,
	}
	for _, it := range items {
		o.Items = append(o.Items, order.Item{
			RecipeID:    it.RecipeID,
			RecipeName:  it.RecipeName,
			RecipeImage: it.RecipeImage,
			Price:       it.Price,
			Quantity:    it.Quantity,
		})
		o.TotalPrice += it.Price * float64(it.Quantity)
	}
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	all = append([]order.Order{o}, all...)
	if err := s.orders.ReplaceAll(ctx, all); err != nil {
		return nil, err
	}
	s.notify("created", &o)
	s.queueSync(ctx)
	return &o, nil
}

// List 当前厨房的订单，可按状态筛选（all/pending/processing/completed），
// 按创建时间倒序；时间解析失败的订单视作相等，不中断排序
func (s *OrderService) List(ctx context.Context, statusFilter string) ([]order.Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	k, err := s.registry.CurrentKitchen(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]order.Order, 0, len(all))
	for _, o := range all {
		if k != nil && o.KitchenID != k.ID {
			continue
		}
		if statusFilter != "" && statusFilter != "all" && string(o.Status) != statusFilter {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, erri := util.ParseISO(out[i].CreateTime)
		tj, errj := util.ParseISO(out[j].CreateTime)
		if erri != nil || errj != nil {
			return false
		}
		return ti.After(tj)
	})
	return out, nil
}

// Get 按 id 查订单
func (s *OrderService) Get(ctx context.Context, id string) (*order.Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, errs.NotFound("订单", id)
}

// Accept 接单：pending -> processing，管理员操作
func (s *OrderService) Accept(ctx context.Context, id string, u *user.Profile) (*order.Order, error) {
	return s.transition(ctx, id, order.StatusProcessing, "accepted", u)
}

// Complete 出餐：processing -> completed，管理员操作
func (s *OrderService) Complete(ctx context.Context, id string, u *user.Profile) (*order.Order, error) {
	return s.transition(ctx, id, order.StatusCompleted, "completed", u)
}

func (s *OrderService) transition(ctx context.Context, id string, next order.Status, event string, u *user.Profile) (*order.Order, error) {
	all, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errs.NotFound("订单", id)
	}
	if err := s.registry.AuthorizeMutation(ctx, u, all[idx].KitchenID); err != nil {
		return nil, err
	}
	if !all[idx].Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%s -> %s: %w", all[idx].Status, next, errs.ErrInvalidTransition)
	}
	all[idx].Status = next
	all[idx].UpdateTime = util.NowISO()
	if err := s.orders.ReplaceAll(ctx, all); err != nil {
		return nil, err
	}
	o := all[idx]
	s.notify(event, &o)
	s.queueSync(ctx)
	return &o, nil
}

// Delete 删除订单，只允许删除已完成的
func (s *OrderService) Delete(ctx context.Context, id string, u *user.Profile) error {
	all, err := s.orders.List(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i := range all {
		if all[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.NotFound("订单", id)
	}
	if err := s.registry.AuthorizeMutation(ctx, u, all[idx].KitchenID); err != nil {
		return err
	}
	if all[idx].Status != order.StatusCompleted {
		return fmt.Errorf("仅已完成订单可删除: %w", errs.ErrInvalidTransition)
	}
	all = append(all[:idx], all[idx+1:]...)
	if err := s.orders.ReplaceAll(ctx, all); err != nil {
		return err
	}
	s.queueSync(ctx)
	return nil
}

func (s *OrderService) notify(event string, o *order.Order) {
	if s.notifier == nil {
		return
	}
	if s.settings != nil && !s.settings.NotificationEnabled(context.Background()) {
		return
	}
	s.notifier.NotifyOrder(event, o)
}

func (s *OrderService) queueSync(ctx context.Context) {
	if s.sync != nil {
		s.sync.QueueUpload(ctx, kv.KeyOrders)
	}
}
