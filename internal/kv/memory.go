package kv

import (
	"encoding/json"
	"sync"

	"github.com/example/homekitchen/internal/errs"
)

// Memory 内存实现，主要给测试用
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailWrites 置为 true 后所有写入返回 StorageError，方便测试降级路径
	FailWrites bool
	// FailReads 置为 true 后所有读取返回 StorageError
	FailReads bool
}

// NewMemory 创建内存存储
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string, out any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailReads {
		return false, errs.Storage("get", key, errMemoryFault)
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, errs.Storage("get", key, err)
	}
	return true, nil
}

func (m *Memory) Set(key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errs.Storage("set", key, errMemoryFault)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Storage("set", key, err)
	}
	m.data[key] = raw
	return nil
}

func (m *Memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errs.Storage("remove", key, errMemoryFault)
	}
	delete(m.data, key)
	return nil
}

var errMemoryFault = &memoryFault{}

type memoryFault struct{}

func (*memoryFault) Error() string { return "injected fault" }
