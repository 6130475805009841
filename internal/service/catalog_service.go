package service

import (
	"context"
	"sort"
	"strings"

	"github.com/example/homekitchen/internal/datamodels/category"
	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
	"github.com/example/homekitchen/internal/util"
)

// UnclassifiedName 分类被删后菜谱的展示名
const UnclassifiedName = "未分类"

// CatalogService 菜单目录：分类 CRUD + 菜谱 CRUD + 筛选
type CatalogService struct {
	categories category.Repository
	recipes    recipe.Repository
	registry   *RegistryService
}

// NewCatalogService 创建目录服务
func NewCatalogService(categories category.Repository, recipes recipe.Repository, registry *RegistryService) *CatalogService {
	return &CatalogService{categories: categories, recipes: recipes, registry: registry}
}

var defaultCategories = []category.Category{
	{ID: "cat_001", Name: "田园时蔬", Icon: "🥬"},
	{ID: "cat_002", Name: "肉肉炒菜", Icon: "🥩"},
	{ID: "cat_003", Name: "硬核荤菜", Icon: "🍖"},
	{ID: "cat_004", Name: "水产海鲜", Icon: "🐟"},
	{ID: "cat_005", Name: "功夫炖汤", Icon: "🍲"},
	{ID: "cat_006", Name: "清爽凉拌", Icon: "🥗"},
	{ID: "cat_007", Name: "小吃速食", Icon: "🍜"},
	{ID: "cat_008", Name: "煎炸烤卤", Icon: "🍗"},
	{ID: "cat_009", Name: "炸锅美食", Icon: "🍤"},
	{ID: "cat_010", Name: "再来亿碗", Icon: "🍚"},
}

// EnsureDefaultCategories 首次启动播种默认分类
func (s *CatalogService) EnsureDefaultCategories(ctx context.Context) error {
	list, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	if len(list) > 0 {
		return nil
	}
	seed := make([]category.Category, len(defaultCategories))
	copy(seed, defaultCategories)
	return s.categories.ReplaceAll(ctx, seed)
}

// ListCategories 分类列表
func (s *CatalogService) ListCategories(ctx context.Context) ([]category.Category, error) {
	return s.categories.List(ctx)
}

// AddCategory 新增分类，名称不能与现有分类重复
func (s *CatalogService) AddCategory(ctx context.Context, name, icon string, u *user.Profile) (*category.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.ErrNotFound
	}
	if err := s.registry.AuthorizeMutation(ctx, u, ""); err != nil {
		return nil, err
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if c.Name == name {
			return nil, errs.ErrDuplicateName
		}
	}
	c := category.Category{ID: util.NewID(), Name: name, Icon: icon}
	list = append(list, c)
	if err := s.categories.ReplaceAll(ctx, list); err != nil {
		return nil, err
	}
	return &c, nil
}

// RenameCategory 重命名分类，同样做重名校验
func (s *CatalogService) RenameCategory(ctx context.Context, id, name string, u *user.Profile) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NotFound("分类", id)
	}
	if err := s.registry.AuthorizeMutation(ctx, u, ""); err != nil {
		return err
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range list {
		if c.ID == id {
			idx = i
			continue
		}
		if c.Name == name {
			return errs.ErrDuplicateName
		}
	}
	if idx < 0 {
		return errs.NotFound("分类", id)
	}
	list[idx].Name = name
	return s.categories.ReplaceAll(ctx, list)
}

// DeleteCategory 删除分类；仍被菜谱引用时拒绝
func (s *CatalogService) DeleteCategory(ctx context.Context, id string, u *user.Profile) error {
	if err := s.registry.AuthorizeMutation(ctx, u, ""); err != nil {
		return err
	}
	list, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, c := range list {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errs.NotFound("分类", id)
	}
	recipes, err := s.recipes.List(ctx)
	if err != nil {
		return err
	}
	for _, r := range recipes {
		if r.CategoryID == id {
			return errs.ErrCategoryInUse
		}
	}
	list = append(list[:idx], list[idx+1:]...)
	return s.categories.ReplaceAll(ctx, list)
}

// ListRecipes 指定厨房可见的菜谱（kitchenId 为空的菜谱所有厨房共享），
// 附带分类名称。kitchenID 传空时用当前厨房
func (s *CatalogService) ListRecipes(ctx context.Context, kitchenID string) ([]recipe.WithCategory, error) {
	if kitchenID == "" {
		k, err := s.registry.CurrentKitchen(ctx)
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, errs.ErrMissingKitchen
		}
		kitchenID = k.ID
	}
	all, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	out := make([]recipe.WithCategory, 0, len(all))
	for _, r := range all {
		if !r.InKitchen(kitchenID) {
			continue
		}
		name, ok := names[r.CategoryID]
		if !ok {
			name = UnclassifiedName
		}
		out = append(out, recipe.WithCategory{Recipe: r, CategoryName: name})
	}
	return out, nil
}

// GetRecipe 按 id 查菜谱
func (s *CatalogService) GetRecipe(ctx context.Context, id string) (*recipe.Recipe, error) {
	all, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, errs.NotFound("菜谱", id)
}

// SaveRecipe 无 id 插入、有 id 按 id 合并更新。
// 写入要求操作者是目标厨房管理员（全新默认厨房的首个用户会被自举为管理员）
func (s *CatalogService) SaveRecipe(ctx context.Context, r *recipe.Recipe, kitchenID string, u *user.Profile) (*recipe.Recipe, error) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, errs.ErrNotFound
	}
	if kitchenID == "" {
		kitchenID = r.KitchenID
	}
	if kitchenID == "" {
		k, err := s.registry.CurrentKitchen(ctx)
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, errs.ErrMissingKitchen
		}
		kitchenID = k.ID
	}
	if err := s.registry.AuthorizeMutation(ctx, u, kitchenID); err != nil {
		return nil, err
	}
	all, err := s.recipes.List(ctx)
	if err != nil {
		return nil, err
	}
	now := util.NowISO()
	if r.ID == "" {
		r.ID = util.NewID()
		r.KitchenID = kitchenID
		r.CreateTime = now
		r.UpdateTime = now
		all = append(all, *r)
		if err := s.recipes.ReplaceAll(ctx, all); err != nil {
			return nil, err
		}
		return r, nil
	}
	for i := range all {
		if all[i].ID != r.ID {
			continue
		}
		r.CreateTime = all[i].CreateTime
		if r.KitchenID == "" {
			r.KitchenID = all[i].KitchenID
		}
		r.UpdateTime = now
		all[i] = *r
		if err := s.recipes.ReplaceAll(ctx, all); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil, errs.NotFound("菜谱", r.ID)
}

// DeleteRecipe 删除菜谱。历史订单里的快照不受影响
func (s *CatalogService) DeleteRecipe(ctx context.Context, id string, u *user.Profile) error {
	all, err := s.recipes.List(ctx)
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
		return errs.NotFound("菜谱", id)
	}
	if err := s.registry.AuthorizeMutation(ctx, u, all[idx].KitchenID); err != nil {
		return err
	}
	all = append(all[:idx], all[idx+1:]...)
	return s.recipes.ReplaceAll(ctx, all)
}

// FilterRecipes 纯内存筛选：分类相等 + 关键字（名称/描述/分类名，不区分大小写），
// 必点菜稳定排序在前
func FilterRecipes(list []recipe.WithCategory, selectedCategory, keyword string) []recipe.WithCategory {
	filtered := make([]recipe.WithCategory, 0, len(list))
	kw := strings.ToLower(strings.TrimSpace(keyword))
	for _, r := range list {
		if selectedCategory != "" && selectedCategory != "all" && r.CategoryID != selectedCategory {
			continue
		}
		if kw != "" {
			if !strings.Contains(strings.ToLower(r.Name), kw) &&
				!strings.Contains(strings.ToLower(r.Description), kw) &&
				!strings.Contains(strings.ToLower(r.CategoryName), kw) {
				continue
			}
		}
		filtered = append(filtered, r)
	}
	// 必点菜在前，其余保持原有顺序
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].IsMustHave && !filtered[j].IsMustHave
	})
	return filtered
}
