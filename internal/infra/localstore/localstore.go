package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/example/homekitchen/internal/errs"
)

// Store 文件版键值存储：每个 key 一个 <key>.json，写入走临时文件+rename，
// 保证单个 key 不会出现写了一半的内容
type Store struct {
	dir string
}

// New 创建文件存储，目录不存在时自动建立
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *Store) Get(key string, out any) (bool, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errs.Storage("get", key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// 文件损坏当作读失败，由上层回退默认值
		return false, errs.Storage("get", key, err)
	}
	return true, nil
}

func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errs.Storage("set", key, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return errs.Storage("set", key, err)
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Storage("set", key, err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Storage("set", key, err)
	}
	if err = os.Rename(tmpName, s.path(key)); err != nil {
		os.Remove(tmpName)
		return errs.Storage("set", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errs.Storage("remove", key, err)
	}
	return nil
}
