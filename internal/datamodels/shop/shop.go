package shop

import "context"

// Admin 厨房管理员。以 openid 为准，nickName 仅作展示和老数据兜底
type Admin struct {
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl"`
	OpenID    string `json:"openid,omitempty"`
	AddTime   string `json:"addTime"`
}

// Kitchen 厨房，一个店铺下可以有多个
type Kitchen struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	IsDefault bool    `json:"isDefault"`
	Admins    []Admin `json:"admins"`
}

// Shop 店铺，全局只有一条
type Shop struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Avatar           string    `json:"avatar"`
	Background       string    `json:"background"`
	Intro            string    `json:"intro"`
	Kitchens         []Kitchen `json:"kitchens"`
	CurrentKitchenID string    `json:"currentKitchenId"`
}

// Valid 店铺数据是否结构完整
func (s *Shop) Valid() bool {
	return s != nil && s.ID != "" && len(s.Kitchens) > 0
}

// FindKitchen 按 id 查厨房，返回指向 Kitchens 内元素的指针
func (s *Shop) FindKitchen(id string) *Kitchen {
	for i := range s.Kitchens {
		if s.Kitchens[i].ID == id {
			return &s.Kitchens[i]
		}
	}
	return nil
}

// CurrentKitchen 当前厨房；currentKitchenId 失配时回退到第一个
func (s *Shop) CurrentKitchen() *Kitchen {
	if s == nil || len(s.Kitchens) == 0 {
		return nil
	}
	if k := s.FindKitchen(s.CurrentKitchenID); k != nil {
		return k
	}
	return &s.Kitchens[0]
}

// DefaultKitchen 默认厨房；没有标记时回退到第一个
func (s *Shop) DefaultKitchen() *Kitchen {
	if s == nil || len(s.Kitchens) == 0 {
		return nil
	}
	for i := range s.Kitchens {
		if s.Kitchens[i].IsDefault {
			return &s.Kitchens[i]
		}
	}
	return &s.Kitchens[0]
}

// Repository 店铺仓储接口
type Repository interface {
	// Get 读取店铺；不存在时返回 (nil, nil)
	Get(ctx context.Context) (*Shop, error)
	Save(ctx context.Context, s *Shop) error
}
