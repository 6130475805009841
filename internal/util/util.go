package util

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ISOLayout 时间统一存成 ISO 字符串，和历史数据（toISOString）兼容
const ISOLayout = "2006-01-02T15:04:05.000Z"

// NewID 生成唯一 ID，沿用历史的 id_ 前缀格式
func NewID() string {
	return "id_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NowISO 当前 UTC 时间的 ISO 字符串
func NowISO() string {
	return time.Now().UTC().Format(ISOLayout)
}

// ParseISO 解析 ISO 时间字符串，兼容 RFC3339 的各种变体
func ParseISO(s string) (time.Time, error) {
	if t, err := time.Parse(ISOLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
