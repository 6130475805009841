package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/kv"
)

// SettingsService 零散开关类设置，目前只有订单通知
type SettingsService struct {
	store kv.Store
}

// NewSettingsService 创建设置服务
func NewSettingsService(store kv.Store) *SettingsService {
	return &SettingsService{store: store}
}

// NotificationEnabled 订单通知是否开启，默认开启
func (s *SettingsService) NotificationEnabled(ctx context.Context) bool {
	var enabled bool
	found, err := s.store.Get(kv.KeyOrderNotification, &enabled)
	if err != nil {
		zap.L().Warn("read orderNotification failed, default to on", zap.Error(err))
		return true
	}
	if !found {
		return true
	}
	return enabled
}

// SetNotification 开关订单通知
func (s *SettingsService) SetNotification(ctx context.Context, enabled bool) error {
	return s.store.Set(kv.KeyOrderNotification, enabled)
}
