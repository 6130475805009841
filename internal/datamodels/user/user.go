package user

import "context"

// Profile 客户端缓存的用户资料。"已登录"即 NickName 非空
type Profile struct {
	NickName  string `json:"nickName"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	OpenID    string `json:"openid,omitempty"`
}

// Authenticated 是否视为已登录
func (p *Profile) Authenticated() bool {
	return p != nil && p.NickName != ""
}

// Repository 用户资料仓储接口
type Repository interface {
	// Get 读取缓存的资料；不存在时返回 (nil, nil)
	Get(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
	Clear(ctx context.Context) error
}
