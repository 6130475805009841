package kv

// 本地键值存储：同步读写固定 key 下的 JSON 数据。
// 所有仓储都建立在这一层之上，和页面层彻底隔离。

// 固定的存储 key，和历史数据保持一致
const (
	KeyShopInfo          = "shopInfo"
	KeyCategories        = "categories"
	KeyRecipes           = "recipes"
	KeyOrders            = "orders"
	KeyCart              = "cart"
	KeyUserInfo          = "userInfo"
	KeyOrderNotification = "orderNotification"
)

// Store 同步键值存储
type Store interface {
	// Get 读取 key 下的 JSON 并反序列化到 out；key 不存在时返回 (false, nil)
	Get(key string, out any) (bool, error)
	// Set 序列化 v 并写入 key
	Set(key string, v any) error
	// Remove 删除 key，key 不存在时不报错
	Remove(key string) error
}
