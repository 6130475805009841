package main

import (
	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/syncserver"
	"github.com/example/homekitchen/pkg/log"
)

func main() {
	log.InitLogger()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	store, err := syncserver.NewBlobStore(cfg)
	if err != nil {
		zap.L().Fatal("init blob store failed", zap.Error(err))
	}

	app := iris.New()
	syncserver.RegisterRoutes(app, cfg, store)

	addr := cfg.SyncServer.Server.Addr()
	zap.L().Info("sync server listening", zap.String("addr", addr), zap.String("backend", cfg.SyncServer.Backend))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		zap.L().Fatal("app run failed", zap.Error(err))
	}
}
