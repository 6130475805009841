package log

import (
	"sync"

	"go.uber.org/zap"
)

var once sync.Once

// InitLogger 初始化全局 zap 日志器，之后统一通过 zap.L() 使用
func InitLogger() {
	once.Do(func() {
		logger, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(logger)
	})
}

// InitDevLogger 开发模式日志（带颜色、人类可读），用于本地调试
func InitDevLogger() {
	once.Do(func() {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		zap.ReplaceGlobals(logger)
	})
}
