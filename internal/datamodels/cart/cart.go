package cart

import "context"

// Item 购物车行。价格/名称/图片在加购时快照，不跟随菜谱变化
type Item struct {
	RecipeID    string  `json:"recipeId"`
	RecipeName  string  `json:"recipeName"`
	RecipeImage string  `json:"recipeImage,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	KitchenID   string  `json:"kitchenId"`
}

// Totals 购物车合计
type Totals struct {
	TotalPrice float64 `json:"totalPrice"`
	TotalCount int     `json:"totalCount"`
}

// Sum 计算合计
func Sum(items []Item) Totals {
	var t Totals
	for _, it := range items {
		t.TotalPrice += it.Price * float64(it.Quantity)
		t.TotalCount += it.Quantity
	}
	return t
}

// Repository 购物车仓储接口
type Repository interface {
	Items(ctx context.Context) ([]Item, error)
	Replace(ctx context.Context, items []Item) error
	Clear(ctx context.Context) error
}
