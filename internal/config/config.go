package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string
	Port int
}

func (s ServerConfig) Addr() string {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig 本地键值存储配置
type StorageConfig struct {
	// Backend 可选 file / redis
	Backend string
	// DataDir file 后端的数据目录，每个 key 一个 JSON 文件
	DataDir string
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr string
}

// MySQLConfig 数据库配置（仅 syncserver 的 mysql 后端使用）
type MySQLConfig struct {
	DSN string
}

// RabbitMQConfig MQ 配置，URL 为空时关闭订单通知
type RabbitMQConfig struct {
	URL string
}

// SyncConfig 云同步客户端配置
type SyncConfig struct {
	// Enabled 为 false 时所有同步调用直接跳过，本地流程不受影响
	Enabled bool
	// BaseURL syncserver 地址，例如 http://127.0.0.1:8081
	BaseURL string
	// TimeoutSeconds 单次同步请求超时（秒）
	TimeoutSeconds int
}

// SyncServerConfig syncserver 自身配置
type SyncServerConfig struct {
	Server ServerConfig
	// Backend 可选 file / mysql
	Backend string
	// DataDir file 后端的数据目录
	DataDir string
	// UploadRatePerSecond 上传接口令牌桶补充速率
	UploadRatePerSecond int64
	// UploadBurst 上传接口令牌桶容量
	UploadBurst int64
}

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret string
}

// Config 应用总配置
type Config struct {
	Server     ServerConfig
	SyncServer SyncServerConfig
	Storage    StorageConfig
	Redis      RedisConfig
	MySQL      MySQLConfig
	RabbitMQ   RabbitMQConfig
	Sync       SyncConfig
	JWT        JWTConfig
}

// DefaultConfig 默认配置，方便快速跑起来
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		SyncServer: SyncServerConfig{
			Server: ServerConfig{
				Host: "0.0.0.0",
				Port: 8081,
			},
			Backend:             "file",
			DataDir:             "./data/sync",
			UploadRatePerSecond: 5,
			UploadBurst:         10,
		},
		Storage: StorageConfig{
			Backend: "file",
			DataDir: "./data/store",
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		MySQL: MySQLConfig{
			DSN: "homekitchen:homekitchen123@tcp(127.0.0.1:3306)/homekitchen?charset=utf8mb4&parseTime=True&loc=Local",
		},
		RabbitMQ: RabbitMQConfig{
			URL: "",
		},
		Sync: SyncConfig{
			Enabled:        false,
			BaseURL:        "http://127.0.0.1:8081",
			TimeoutSeconds: 10,
		},
		JWT: JWTConfig{
			Secret: "homekitchen-secret",
		},
	}
}

// LoadConfig 从目录读取 config.yaml 并覆盖默认值；文件不存在时直接返回默认配置
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
