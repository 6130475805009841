package recipe

import "context"

// Recipe 菜谱。KitchenID 为空表示所有厨房共享（老数据兼容规则）
type Recipe struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	CategoryID  string  `json:"categoryId"`
	Description string  `json:"description,omitempty"`
	Image       string  `json:"image,omitempty"`
	Price       float64 `json:"price"`
	KitchenID   string  `json:"kitchenId,omitempty"`
	IsMustHave  bool    `json:"isMustHave"`
	Difficulty  string  `json:"difficulty,omitempty"`
	Duration    string  `json:"duration,omitempty"`
	Serving     string  `json:"serving,omitempty"`
	RecipeLink  string  `json:"recipeLink,omitempty"`
	CreateTime  string  `json:"createTime"`
	UpdateTime  string  `json:"updateTime"`
}

// InKitchen 菜谱是否属于指定厨房
func (r *Recipe) InKitchen(kitchenID string) bool {
	return r.KitchenID == "" || r.KitchenID == kitchenID
}

// WithCategory 列表展示用：菜谱加上分类名称（分类已删除时为"未分类"）
type WithCategory struct {
	Recipe
	CategoryName string `json:"categoryName"`
}

// Repository 菜谱仓储接口
type Repository interface {
	List(ctx context.Context) ([]Recipe, error)
	ReplaceAll(ctx context.Context, list []Recipe) error
}
