package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
	"github.com/example/homekitchen/internal/util"
)

// RegistryService 店铺/厨房注册表：当前厨房选择、管理员判定、厨房增删改
type RegistryService struct {
	shops shop.Repository
	users user.Repository
}

// NewRegistryService 创建注册表服务
func NewRegistryService(shops shop.Repository, users user.Repository) *RegistryService {
	return &RegistryService{shops: shops, users: users}
}

func defaultShop() *shop.Shop {
	return &shop.Shop{
		ID:         "shop_001",
		Name:       "我的小店",
		Avatar:     "",
		Background: "",
		Intro:      "欢迎来到我的小店",
		Kitchens: []shop.Kitchen{
			{
				ID:        "kitchen_001",
				Name:      "主厨房",
				IsDefault: true,
				Admins:    []shop.Admin{},
			},
		},
		CurrentKitchenID: "kitchen_001",
	}
}

// GetOrInitShop 读取店铺；不存在或结构损坏时重建默认店铺并落盘。
// 数据有效时重复调用没有副作用
func (s *RegistryService) GetOrInitShop(ctx context.Context) (*shop.Shop, error) {
	sp, err := s.shops.Get(ctx)
	if err != nil {
		return nil, err
	}
	if sp.Valid() {
		return sp, nil
	}
	if sp != nil {
		zap.L().Warn("shopInfo is corrupt, re-seeding defaults")
	}
	d := defaultShop()
	if err := s.shops.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UpdateShop 整体覆盖店铺数据；currentKitchenId 失配时回退到第一个厨房
func (s *RegistryService) UpdateShop(ctx context.Context, sp *shop.Shop) error {
	if !sp.Valid() {
		return errs.ErrMissingKitchen
	}
	if sp.FindKitchen(sp.CurrentKitchenID) == nil {
		sp.CurrentKitchenID = sp.Kitchens[0].ID
	}
	return s.shops.Save(ctx, sp)
}

// CurrentKitchen 当前厨房
func (s *RegistryService) CurrentKitchen(ctx context.Context) (*shop.Kitchen, error) {
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return nil, err
	}
	return sp.CurrentKitchen(), nil
}

// SwitchKitchen 切换当前厨房；kitchenId 不存在时静默不动
func (s *RegistryService) SwitchKitchen(ctx context.Context, kitchenID string) error {
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	if sp.FindKitchen(kitchenID) == nil {
		return nil
	}
	sp.CurrentKitchenID = kitchenID
	return s.shops.Save(ctx, sp)
}

// ActingUser 解析操作用户：优先传入的 u，否则取本地缓存的资料
func (s *RegistryService) ActingUser(ctx context.Context, u *user.Profile) *user.Profile {
	if u.Authenticated() {
		return u
	}
	stored, _ := s.users.Get(ctx)
	return stored
}

// IsAdmin 纯判定：u 是否为厨房 k 的管理员。
// 双方都有 openid 时以 openid 为准，仅对没有 openid 的老数据退回昵称比较
func IsAdmin(u *user.Profile, k *shop.Kitchen) bool {
	if !u.Authenticated() || k == nil {
		return false
	}
	for _, a := range k.Admins {
		if a.OpenID != "" && u.OpenID != "" {
			if a.OpenID == u.OpenID {
				return true
			}
			continue
		}
		if a.NickName == u.NickName {
			return true
		}
	}
	return false
}

// CheckIsAdmin 当前用户是否为当前厨房管理员。
// 默认厨房还没有任何管理员时，首个登录用户自动成为管理员（落盘）
func (s *RegistryService) CheckIsAdmin(ctx context.Context, u *user.Profile) (bool, error) {
	u = s.ActingUser(ctx, u)
	if !u.Authenticated() {
		return false, nil
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return false, err
	}
	k := sp.CurrentKitchen()
	if k == nil {
		return false, nil
	}
	if len(k.Admins) == 0 && k.IsDefault {
		k.Admins = append(k.Admins, adminFromProfile(u))
		if err := s.shops.Save(ctx, sp); err != nil {
			return false, err
		}
		zap.L().Info("first admin enrolled", zap.String("kitchen", k.ID), zap.String("nickName", u.NickName))
		return true, nil
	}
	return IsAdmin(u, k), nil
}

// AuthorizeMutation 管理操作统一入口：目标厨房必须存在且 u 是其管理员。
// 带上 CheckIsAdmin 相同的首管理员自举逻辑
func (s *RegistryService) AuthorizeMutation(ctx context.Context, u *user.Profile, kitchenID string) error {
	u = s.ActingUser(ctx, u)
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	var k *shop.Kitchen
	if kitchenID == "" {
		k = sp.CurrentKitchen()
	} else {
		k = sp.FindKitchen(kitchenID)
	}
	if k == nil {
		return errs.ErrMissingKitchen
	}
	if !u.Authenticated() {
		return errs.ErrPermission
	}
	if len(k.Admins) == 0 && k.IsDefault {
		k.Admins = append(k.Admins, adminFromProfile(u))
		return s.shops.Save(ctx, sp)
	}
	if !IsAdmin(u, k) {
		return errs.ErrPermission
	}
	return nil
}

func adminFromProfile(u *user.Profile) shop.Admin {
	return shop.Admin{
		NickName:  u.NickName,
		AvatarURL: u.AvatarURL,
		OpenID:    u.OpenID,
		AddTime:   util.NowISO(),
	}
}

// AddKitchen 新建厨房，创建者自动成为第一个管理员
func (s *RegistryService) AddKitchen(ctx context.Context, name string, u *user.Profile) (*shop.Kitchen, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrNotFound
	}
	if err := s.AuthorizeMutation(ctx, u, ""); err != nil {
		return nil, err
	}
	u = s.ActingUser(ctx, u)
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return nil, err
	}
	k := shop.Kitchen{
		ID:        util.NewID(),
		Name:      name,
		IsDefault: false,
		Admins:    []shop.Admin{adminFromProfile(u)},
	}
	sp.Kitchens = append(sp.Kitchens, k)
	if err := s.shops.Save(ctx, sp); err != nil {
		return nil, err
	}
	return &k, nil
}

// RenameKitchen 重命名厨房
func (s *RegistryService) RenameKitchen(ctx context.Context, kitchenID, name string, u *user.Profile) error {
	name = strings.TrimSpace(name)
	if err := s.AuthorizeMutation(ctx, u, kitchenID); err != nil {
		return err
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	k := sp.FindKitchen(kitchenID)
	if k == nil {
		return errs.NotFound("厨房", kitchenID)
	}
	k.Name = name
	return s.shops.Save(ctx, sp)
}

// DeleteKitchen 删除厨房。默认厨房不可删；删的是当前厨房时回退到默认厨房
func (s *RegistryService) DeleteKitchen(ctx context.Context, kitchenID string, u *user.Profile) error {
	if err := s.AuthorizeMutation(ctx, u, kitchenID); err != nil {
		return err
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	k := sp.FindKitchen(kitchenID)
	if k == nil {
		return errs.NotFound("厨房", kitchenID)
	}
	if k.IsDefault {
		return errs.ErrDefaultKitchen
	}
	kept := sp.Kitchens[:0]
	for _, kk := range sp.Kitchens {
		if kk.ID != kitchenID {
			kept = append(kept, kk)
		}
	}
	sp.Kitchens = kept
	if sp.CurrentKitchenID == kitchenID {
		sp.CurrentKitchenID = sp.DefaultKitchen().ID
	}
	return s.shops.Save(ctx, sp)
}

// AddAdmin 为厨房添加管理员
func (s *RegistryService) AddAdmin(ctx context.Context, kitchenID string, a shop.Admin, u *user.Profile) error {
	if err := s.AuthorizeMutation(ctx, u, kitchenID); err != nil {
		return err
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	k := sp.FindKitchen(kitchenID)
	if k == nil {
		return errs.NotFound("厨房", kitchenID)
	}
	for _, exist := range k.Admins {
		if (a.OpenID != "" && exist.OpenID == a.OpenID) ||
			(a.OpenID == "" && exist.NickName == a.NickName) {
			return errs.ErrDuplicateName
		}
	}
	if a.AddTime == "" {
		a.AddTime = util.NowISO()
	}
	k.Admins = append(k.Admins, a)
	return s.shops.Save(ctx, sp)
}

// RemoveAdmin 按 openid（老数据按昵称）移除管理员
func (s *RegistryService) RemoveAdmin(ctx context.Context, kitchenID, ident string, u *user.Profile) error {
	if err := s.AuthorizeMutation(ctx, u, kitchenID); err != nil {
		return err
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	k := sp.FindKitchen(kitchenID)
	if k == nil {
		return errs.NotFound("厨房", kitchenID)
	}
	kept := k.Admins[:0]
	removed := false
	for _, a := range k.Admins {
		if !removed && (a.OpenID == ident || (a.OpenID == "" && a.NickName == ident)) {
			removed = true
			continue
		}
		kept = append(kept, a)
	}
	if !removed {
		return errs.NotFound("管理员", ident)
	}
	k.Admins = kept
	return s.shops.Save(ctx, sp)
}

// UpdateShopProfile 更新店铺资料（名称/简介/头像/背景）
func (s *RegistryService) UpdateShopProfile(ctx context.Context, name, intro, avatar, background string, u *user.Profile) error {
	if err := s.AuthorizeMutation(ctx, u, ""); err != nil {
		return err
	}
	sp, err := s.GetOrInitShop(ctx)
	if err != nil {
		return err
	}
	if name = strings.TrimSpace(name); name != "" {
		sp.Name = name
	}
	if intro != "" {
		sp.Intro = intro
	}
	if avatar != "" {
		sp.Avatar = avatar
	}
	if background != "" {
		sp.Background = background
	}
	return s.shops.Save(ctx, sp)
}
