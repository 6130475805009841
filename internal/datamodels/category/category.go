package category

import "context"

// Category 菜谱分类，店铺级、不区分厨房
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// Repository 分类仓储接口
type Repository interface {
	List(ctx context.Context) ([]Category, error)
	ReplaceAll(ctx context.Context, list []Category) error
}
