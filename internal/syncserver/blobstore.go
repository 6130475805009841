package syncserver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/example/homekitchen/internal/config"
)

// BlobStore 每个 (openid, dataType) 一份 JSON 数据
type BlobStore interface {
	Put(openid, dataType string, data json.RawMessage) error
	// Get 返回 (nil, false, nil) 表示没有这份数据
	Get(openid, dataType string) (json.RawMessage, bool, error)
}

// 只允许同步这几类数据
var allowedDataTypes = map[string]bool{
	"shopInfo":   true,
	"categories": true,
	"recipes":    true,
	"orders":     true,
}

// ValidDataType dataType 是否允许同步
func ValidDataType(dataType string) bool {
	return allowedDataTypes[dataType]
}

var openidPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)

// ValidOpenID openid 格式校验，顺带挡掉路径穿越
func ValidOpenID(openid string) bool {
	return openidPattern.MatchString(openid)
}

// ---------------- 文件后端 ----------------

// FileStore 数据落在本地目录，<openid>_<dataType>.json
type FileStore struct {
	dir string
}

// NewFileStore 创建文件后端，目录自动建立
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(openid, dataType string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", openid, dataType))
}

func (s *FileStore) Put(openid, dataType string, data json.RawMessage) error {
	return os.WriteFile(s.path(openid, dataType), data, 0o644)
}

func (s *FileStore) Get(openid, dataType string) (json.RawMessage, bool, error) {
	raw, err := os.ReadFile(s.path(openid, dataType))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// ---------------- MySQL 后端 ----------------

// SyncBlob 同步数据表，(openid, dataType) 唯一
type SyncBlob struct {
	ID        int64  `gorm:"primaryKey"`
	OpenID    string `gorm:"column:openid;size:64;uniqueIndex:uk_owner_type;not null"`
	DataType  string `gorm:"size:32;uniqueIndex:uk_owner_type;not null"`
	Data      []byte `gorm:"type:mediumblob"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// MySQLStore 数据落在 MySQL，适合不方便挂持久盘的部署
type MySQLStore struct {
	db *gorm.DB
}

// NewMySQLStore 连接数据库并迁移表结构
func NewMySQLStore(cfg *config.MySQLConfig) (*MySQLStore, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if err := db.AutoMigrate(&SyncBlob{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Put(openid, dataType string, data json.RawMessage) error {
	blob := SyncBlob{OpenID: openid, DataType: dataType, Data: data}
	return s.db.
		Where("openid = ? AND data_type = ?", openid, dataType).
		Assign(map[string]any{"data": []byte(data)}).
		FirstOrCreate(&blob).Error
}

func (s *MySQLStore) Get(openid, dataType string) (json.RawMessage, bool, error) {
	var blob SyncBlob
	err := s.db.
		Where("openid = ? AND data_type = ?", openid, dataType).
		First(&blob).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return blob.Data, true, nil
}
