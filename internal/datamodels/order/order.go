package order

import "context"

// Status 订单状态，只能单向流转 pending -> processing -> completed
type Status string

const (
	StatusPending    Status = "pending"    // 待处理
	StatusProcessing Status = "processing" // 制作中
	StatusCompleted  Status = "completed"  // 已完成
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo 是否允许流转到 next
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted
	}
	return false
}

// Item 订单行，下单时从购物车快照而来
type Item struct {
	RecipeID    string  `json:"recipeId"`
	RecipeName  string  `json:"recipeName"`
	RecipeImage string  `json:"recipeImage,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Order 订单。TotalPrice 在创建时算好，之后不再重算
type Order struct {
	ID          string  `json:"id"`
	KitchenID   string  `json:"kitchenId"`
	KitchenName string  `json:"kitchenName"`
	Items       []Item  `json:"items"`
	TotalPrice  float64 `json:"totalPrice"`
	Status      Status  `json:"status"`
	Remark      string  `json:"remark"`
	CreateTime  string  `json:"createTime"`
	UpdateTime  string  `json:"updateTime"`
}

// Repository 订单仓储接口，整体是一个只增的账本
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	ReplaceAll(ctx context.Context, list []Order) error
}
