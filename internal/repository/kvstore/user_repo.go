package kvstore

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/kv"
)

type userRepo struct {
	store kv.Store
}

// NewUserRepository 创建用户资料仓储
func NewUserRepository(store kv.Store) user.Repository {
	return &userRepo{store: store}
}

func (r *userRepo) Get(ctx context.Context) (*user.Profile, error) {
	var p user.Profile
	found, err := r.store.Get(kv.KeyUserInfo, &p)
	if err != nil {
		zap.L().Warn("read userInfo failed, fall back to empty", zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

func (r *userRepo) Save(ctx context.Context, p *user.Profile) error {
	return r.store.Set(kv.KeyUserInfo, p)
}

func (r *userRepo) Clear(ctx context.Context) error {
	return r.store.Remove(kv.KeyUserInfo)
}
