package redis

import (
	"encoding/json"
	"sync"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/errs"
)

var (
	client radix.Client
	once   sync.Once
)

// Init 初始化 Redis 连接池
func Init(cfg *config.RedisConfig) (radix.Client, error) {
	var initErr error
	once.Do(func() {
		pool, err := radix.NewPool("tcp", cfg.Addr, 10)
		if err != nil {
			initErr = err
			return
		}
		client = pool
	})
	return client, initErr
}

// Client 获取 Redis 客户端
func Client() radix.Client {
	return client
}

// keyPrefix 避免和同实例上的其他业务撞 key
const keyPrefix = "homekitchen:kv:"

// Store Redis 版键值存储，JSON 串整体 GET/SET
type Store struct {
	client radix.Client
}

// NewStore 基于已有连接池创建存储
func NewStore(c radix.Client) *Store {
	return &Store{client: c}
}

func (s *Store) Get(key string, out any) (bool, error) {
	var raw string
	if err := s.client.Do(radix.Cmd(&raw, "GET", keyPrefix+key)); err != nil {
		return false, errs.Storage("get", key, err)
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return false, errs.Storage("get", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Storage("set", key, err)
	}
	if err := s.client.Do(radix.FlatCmd(nil, "SET", keyPrefix+key, raw)); err != nil {
		return errs.Storage("set", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if err := s.client.Do(radix.Cmd(nil, "DEL", keyPrefix+key)); err != nil {
		return errs.Storage("remove", key, err)
	}
	return nil
}
