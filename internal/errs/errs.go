package errs

import (
	"errors"
	"fmt"
)

// 业务错误全部是可恢复错误：上层拿到后提示用户即可，进程不退出。
var (
	// ErrNotFound 按 id 查找菜谱/订单/分类/厨房失败
	ErrNotFound = errors.New("记录不存在")
	// ErrDuplicateName 分类名称重复
	ErrDuplicateName = errors.New("名称已存在")
	// ErrCategoryInUse 分类下仍有菜谱，禁止删除
	ErrCategoryInUse = errors.New("分类下仍有菜谱，无法删除")
	// ErrEmptyCart 购物车为空时下单
	ErrEmptyCart = errors.New("购物车为空")
	// ErrMissingKitchen 当前厨房不可用
	ErrMissingKitchen = errors.New("厨房信息错误")
	// ErrInvalidTransition 订单状态不允许该流转
	ErrInvalidTransition = errors.New("订单状态不允许该操作")
	// ErrPermission 非管理员执行管理操作
	ErrPermission = errors.New("无权限操作")
	// ErrConfirmRemove 购物车数量减到 0 前需要调用方确认删除
	ErrConfirmRemove = errors.New("数量已为 1，需确认后移除")
	// ErrDefaultKitchen 默认厨房不可删除
	ErrDefaultKitchen = errors.New("默认厨房不可删除")
)

// StorageError 底层键值存储读写失败
type StorageError struct {
	Op  string // get / set / remove
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Storage 包装一个存储错误
func Storage(op, key string, err error) error {
	return &StorageError{Op: op, Key: key, Err: err}
}

// IsStorage 判断是否为存储错误
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// NotFound 带上下文的 ErrNotFound
func NotFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}
