package server

import (
	"context"
	"errors"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/auth"
	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/datamodels/recipe"
	"github.com/example/homekitchen/internal/datamodels/shop"
	"github.com/example/homekitchen/internal/datamodels/user"
	"github.com/example/homekitchen/internal/errs"
	"github.com/example/homekitchen/internal/infra/localstore"
	"github.com/example/homekitchen/internal/infra/mq"
	"github.com/example/homekitchen/internal/infra/redis"
	"github.com/example/homekitchen/internal/kv"
	"github.com/example/homekitchen/internal/repository/kvstore"
	"github.com/example/homekitchen/internal/service"
)

// newStore 按配置选择键值存储后端
func newStore(cfg *config.Config) (kv.Store, error) {
	switch cfg.Storage.Backend {
	case "redis":
		client, err := redis.Init(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return redis.NewStore(client), nil
	default:
		return localstore.New(cfg.Storage.DataDir)
	}
}

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) error {
	store, err := newStore(cfg)
	if err != nil {
		return err
	}
	notifier := mq.NewNotifier(mq.Init(&cfg.RabbitMQ))

	// 仓储与服务
	shopRepo := kvstore.NewShopRepository(store)
	categoryRepo := kvstore.NewCategoryRepository(store)
	recipeRepo := kvstore.NewRecipeRepository(store)
	cartRepo := kvstore.NewCartRepository(store)
	orderRepo := kvstore.NewOrderRepository(store)
	userRepo := kvstore.NewUserRepository(store)

	registrySvc := service.NewRegistryService(shopRepo, userRepo)
	catalogSvc := service.NewCatalogService(categoryRepo, recipeRepo, registrySvc)
	settingsSvc := service.NewSettingsService(store)
	syncSvc := service.NewSyncService(cfg.Sync, shopRepo, categoryRepo, recipeRepo, orderRepo, userRepo)
	orderSvc := service.NewOrderService(orderRepo, registrySvc, settingsSvc, notifier, syncSvc)
	cartSvc := service.NewCartService(cartRepo, catalogSvc, registrySvc, orderSvc)
	snapshotSvc := service.NewSnapshotService(shopRepo, categoryRepo, recipeRepo, orderRepo, registrySvc)

	// 启动时播种默认数据，重复执行没有副作用
	startCtx := context.Background()
	if _, err := registrySvc.GetOrInitShop(startCtx); err != nil {
		return err
	}
	if err := catalogSvc.EnsureDefaultCategories(startCtx); err != nil {
		return err
	}

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// 操作用户解析：带了 JWT 用 JWT，否则交给服务层取本地缓存的资料
	actingUser := func(ctx iris.Context) *user.Profile {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			return nil
		}
		claims, err := auth.ParseToken(&cfg.JWT, token)
		if err != nil {
			return nil
		}
		return &user.Profile{OpenID: claims.OpenID, NickName: claims.NickName}
	}

	// ---------------- 用户资料 ----------------

	api.Get("/user/profile", func(ctx iris.Context) {
		p, _ := userRepo.Get(reqCtx(ctx))
		ok(ctx, p)
	})

	api.Put("/user/profile", func(ctx iris.Context) {
		var p user.Profile
		if err := ctx.ReadJSON(&p); err != nil {
			badRequest(ctx, err)
			return
		}
		if !p.Authenticated() {
			badRequest(ctx, errors.New("昵称不能为空"))
			return
		}
		if err := userRepo.Save(reqCtx(ctx), &p); err != nil {
			fail(ctx, err)
			return
		}
		isAdmin, _ := registrySvc.CheckIsAdmin(reqCtx(ctx), &p)
		ok(ctx, iris.Map{"profile": p, "isAdmin": isAdmin})
	})

	api.Delete("/user/profile", func(ctx iris.Context) {
		if err := userRepo.Clear(reqCtx(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Get("/admin/check", func(ctx iris.Context) {
		isAdmin, err := registrySvc.CheckIsAdmin(reqCtx(ctx), actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"isAdmin": isAdmin})
	})

	// ---------------- 店铺 / 厨房 ----------------

	api.Get("/shop", func(ctx iris.Context) {
		sp, err := registrySvc.GetOrInitShop(reqCtx(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"shop": sp, "currentKitchen": sp.CurrentKitchen()})
	})

	api.Put("/shop", func(ctx iris.Context) {
		var req struct {
			Name       string `json:"name"`
			Intro      string `json:"intro"`
			Avatar     string `json:"avatar"`
			Background string `json:"background"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := registrySvc.UpdateShopProfile(reqCtx(ctx), req.Name, req.Intro, req.Avatar, req.Background, actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Post("/shop/switch-kitchen", func(ctx iris.Context) {
		var req struct {
			KitchenID string `json:"kitchenId"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := registrySvc.SwitchKitchen(reqCtx(ctx), req.KitchenID); err != nil {
			fail(ctx, err)
			return
		}
		k, err := registrySvc.CurrentKitchen(reqCtx(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"currentKitchen": k})
	})

	api.Post("/shop/kitchens", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		k, err := registrySvc.AddKitchen(reqCtx(ctx), req.Name, actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, k)
	})

	api.Put("/shop/kitchens/{id:string}", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := registrySvc.RenameKitchen(reqCtx(ctx), ctx.Params().Get("id"), req.Name, actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Delete("/shop/kitchens/{id:string}", func(ctx iris.Context) {
		if err := registrySvc.DeleteKitchen(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Post("/shop/kitchens/{id:string}/admins", func(ctx iris.Context) {
		var a shop.Admin
		if err := ctx.ReadJSON(&a); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := registrySvc.AddAdmin(reqCtx(ctx), ctx.Params().Get("id"), a, actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Delete("/shop/kitchens/{id:string}/admins/{ident:string}", func(ctx iris.Context) {
		err := registrySvc.RemoveAdmin(reqCtx(ctx), ctx.Params().Get("id"), ctx.Params().Get("ident"), actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	// ---------------- 分类 ----------------

	api.Get("/categories", func(ctx iris.Context) {
		list, err := catalogSvc.ListCategories(reqCtx(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	api.Post("/categories", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
			Icon string `json:"icon"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		c, err := catalogSvc.AddCategory(reqCtx(ctx), req.Name, req.Icon, actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, c)
	})

	api.Put("/categories/{id:string}", func(ctx iris.Context) {
		var req struct {
			Name string `json:"name"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := catalogSvc.RenameCategory(reqCtx(ctx), ctx.Params().Get("id"), req.Name, actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Delete("/categories/{id:string}", func(ctx iris.Context) {
		if err := catalogSvc.DeleteCategory(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	// ---------------- 菜谱 ----------------

	// 列表支持 ?kitchenId= 指定厨房、?category= 分类、?q= 关键字
	api.Get("/recipes", func(ctx iris.Context) {
		list, err := catalogSvc.ListRecipes(reqCtx(ctx), ctx.URLParam("kitchenId"))
		if err != nil {
			fail(ctx, err)
			return
		}
		list = service.FilterRecipes(list, ctx.URLParam("category"), ctx.URLParam("q"))
		ok(ctx, list)
	})

	api.Get("/recipes/{id:string}", func(ctx iris.Context) {
		r, err := catalogSvc.GetRecipe(reqCtx(ctx), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, r)
	})

	api.Post("/recipes", func(ctx iris.Context) {
		var req struct {
			recipe.Recipe
			TargetKitchenID string `json:"targetKitchenId"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		r, err := catalogSvc.SaveRecipe(reqCtx(ctx), &req.Recipe, req.TargetKitchenID, actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, r)
	})

	api.Delete("/recipes/{id:string}", func(ctx iris.Context) {
		if err := catalogSvc.DeleteRecipe(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	// ---------------- 购物车 ----------------

	api.Get("/cart", func(ctx iris.Context) {
		items, totals, err := cartSvc.Items(reqCtx(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"items": items, "totals": totals})
	})

	api.Post("/cart/items", func(ctx iris.Context) {
		var req struct {
			RecipeID string `json:"recipeId"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		items, err := cartSvc.AddItem(reqCtx(ctx), req.RecipeID)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, items)
	})

	api.Post("/cart/items/{index:int}/increment", func(ctx iris.Context) {
		items, err := cartSvc.IncrementQuantity(reqCtx(ctx), ctx.Params().GetIntDefault("index", -1))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, items)
	})

	// 数量为 1 时再减需要带 ?confirmed=true，否则返回 409 提示先确认
	api.Post("/cart/items/{index:int}/decrement", func(ctx iris.Context) {
		confirmed, _ := ctx.URLParamBool("confirmed")
		items, err := cartSvc.DecrementQuantity(reqCtx(ctx), ctx.Params().GetIntDefault("index", -1), confirmed)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, items)
	})

	api.Delete("/cart/items/{index:int}", func(ctx iris.Context) {
		items, err := cartSvc.RemoveItem(reqCtx(ctx), ctx.Params().GetIntDefault("index", -1))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, items)
	})

	api.Delete("/cart", func(ctx iris.Context) {
		if err := cartSvc.Clear(reqCtx(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Post("/cart/checkout", func(ctx iris.Context) {
		var req struct {
			Remark string `json:"remark"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		o, err := cartSvc.Checkout(reqCtx(ctx), req.Remark)
		if err != nil {
			// 订单已创建、仅清车失败的情况也要把订单带回去
			if o != nil {
				zap.L().Warn("checkout partially failed", zap.String("order", o.ID), zap.Error(err))
				ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error(), "data": o})
				return
			}
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	// ---------------- 订单 ----------------

	api.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.List(reqCtx(ctx), ctx.URLParamDefault("status", "all"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	api.Get("/orders/{id:string}", func(ctx iris.Context) {
		o, err := orderSvc.Get(reqCtx(ctx), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	api.Post("/orders/{id:string}/accept", func(ctx iris.Context) {
		o, err := orderSvc.Accept(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	api.Post("/orders/{id:string}/complete", func(ctx iris.Context) {
		o, err := orderSvc.Complete(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	api.Delete("/orders/{id:string}", func(ctx iris.Context) {
		if err := orderSvc.Delete(reqCtx(ctx), ctx.Params().Get("id"), actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	// ---------------- 设置 / 数据 ----------------

	api.Get("/settings/notification", func(ctx iris.Context) {
		ok(ctx, iris.Map{"enabled": settingsSvc.NotificationEnabled(reqCtx(ctx))})
	})

	api.Put("/settings/notification", func(ctx iris.Context) {
		var req struct {
			Enabled bool `json:"enabled"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := settingsSvc.SetNotification(reqCtx(ctx), req.Enabled); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Get("/data/export", func(ctx iris.Context) {
		snap, err := snapshotSvc.Export(reqCtx(ctx))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, snap)
	})

	api.Post("/data/import", func(ctx iris.Context) {
		var snap service.Snapshot
		if err := ctx.ReadJSON(&snap); err != nil {
			badRequest(ctx, err)
			return
		}
		if err := snapshotSvc.Import(reqCtx(ctx), &snap, actingUser(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Post("/sync/upload", func(ctx iris.Context) {
		if err := syncSvc.UploadAll(reqCtx(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	api.Post("/sync/download", func(ctx iris.Context) {
		if err := syncSvc.DownloadAll(reqCtx(ctx)); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, nil)
	})

	return nil
}

func reqCtx(ctx iris.Context) context.Context {
	return ctx.Request().Context()
}

func ok(ctx iris.Context, data any) {
	ctx.JSON(iris.Map{"code": 0, "data": data})
}

func badRequest(ctx iris.Context, err error) {
	ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
}

// fail 把业务错误映射到 HTTP 状态码
func fail(ctx iris.Context, err error) {
	code := 500
	switch {
	case errors.Is(err, errs.ErrPermission):
		code = 403
	case errors.Is(err, errs.ErrNotFound):
		code = 404
	case errors.Is(err, errs.ErrConfirmRemove):
		code = 409
	case errors.Is(err, errs.ErrDuplicateName),
		errors.Is(err, errs.ErrCategoryInUse),
		errors.Is(err, errs.ErrEmptyCart),
		errors.Is(err, errs.ErrMissingKitchen),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrDefaultKitchen):
		code = 400
	}
	if code == 500 {
		zap.L().Error("request failed", zap.String("path", ctx.Path()), zap.Error(err))
	}
	ctx.StopWithJSON(code, iris.Map{"code": code, "msg": err.Error()})
}
