package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/server"
	"github.com/example/homekitchen/pkg/log"
)

func main() {
	log.InitLogger()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	app := iris.New()
	if err := server.RegisterRoutes(app, cfg); err != nil {
		zap.L().Fatal("init routes failed", zap.Error(err))
	}

	addr := cfg.Server.Addr()
	zap.L().Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("app run failed", zap.Error(err))
	}
}
