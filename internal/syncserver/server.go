package syncserver

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"

	"github.com/example/homekitchen/internal/auth"
	"github.com/example/homekitchen/internal/config"
	"github.com/example/homekitchen/internal/middleware"
)

// NewBlobStore 按配置选择存储后端
func NewBlobStore(cfg *config.Config) (BlobStore, error) {
	if cfg.SyncServer.Backend == "mysql" {
		return NewMySQLStore(&cfg.MySQL)
	}
	return NewFileStore(cfg.SyncServer.DataDir)
}

// mockOpenID 基于 code 生成稳定的模拟 openid：同一个 code 映射到同一个 openid。
// 真实部署应替换为微信 jscode2session 调用
func mockOpenID(code string) string {
	sum := sha256.Sum256([]byte(code))
	return "mock_openid_" + hex.EncodeToString(sum[:])[:24]
}

func randomSessionKey() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// RegisterRoutes 注册 syncserver 的全部路由
func RegisterRoutes(app *iris.Application, cfg *config.Config, store BlobStore) {
	uploadLimiter := middleware.NewTokenBucket(cfg.SyncServer.UploadBurst, cfg.SyncServer.UploadRatePerSecond)

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{
			"success":   true,
			"message":   "服务运行正常",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"storage":   cfg.SyncServer.Backend,
		})
	})

	api := app.Party("/api")

	// 登录凭证换 openid。响应与历史客户端兼容，额外带一个会话 token
	api.Post("/user/getOpenId", func(ctx iris.Context) {
		var req struct {
			Code     string `json:"code"`
			NickName string `json:"nickName"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.Code == "" {
			ctx.JSON(iris.Map{"success": false, "message": "code不能为空"})
			return
		}
		openid := mockOpenID(req.Code)
		token, err := auth.GenerateToken(&cfg.JWT, openid, req.NickName)
		if err != nil {
			zap.L().Error("generate session token failed", zap.Error(err))
			ctx.JSON(iris.Map{"success": false, "message": "服务器错误"})
			return
		}
		ctx.JSON(iris.Map{
			"success": true,
			"data": iris.Map{
				"openid":      openid,
				"session_key": randomSessionKey(),
				"token":       token,
			},
		})
	})

	api.Post("/data/upload", middleware.RateLimitMiddleware(uploadLimiter), func(ctx iris.Context) {
		var req struct {
			OpenID   string          `json:"openid"`
			DataType string          `json:"dataType"`
			Data     json.RawMessage `json:"data"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.JSON(iris.Map{"success": false, "message": "参数不完整"})
			return
		}
		if req.OpenID == "" || req.DataType == "" || len(req.Data) == 0 {
			ctx.JSON(iris.Map{"success": false, "message": "参数不完整"})
			return
		}
		if !ValidOpenID(req.OpenID) || !ValidDataType(req.DataType) {
			ctx.JSON(iris.Map{"success": false, "message": "参数不合法"})
			return
		}
		if err := store.Put(req.OpenID, req.DataType, req.Data); err != nil {
			zap.L().Error("store blob failed",
				zap.String("dataType", req.DataType), zap.Error(err))
			ctx.JSON(iris.Map{"success": false, "message": "保存失败"})
			return
		}
		ctx.JSON(iris.Map{"success": true, "message": req.DataType + " 上传成功"})
	})

	api.Post("/data/download", func(ctx iris.Context) {
		var req struct {
			OpenID   string `json:"openid"`
			DataType string `json:"dataType"`
		}
		if err := ctx.ReadJSON(&req); err != nil || req.OpenID == "" || req.DataType == "" {
			ctx.JSON(iris.Map{"success": false, "message": "参数不完整"})
			return
		}
		if !ValidOpenID(req.OpenID) || !ValidDataType(req.DataType) {
			ctx.JSON(iris.Map{"success": false, "message": "参数不合法"})
			return
		}
		raw, found, err := store.Get(req.OpenID, req.DataType)
		if err != nil {
			zap.L().Error("load blob failed",
				zap.String("dataType", req.DataType), zap.Error(err))
			ctx.JSON(iris.Map{"success": false, "message": "读取失败"})
			return
		}
		if !found {
			ctx.JSON(iris.Map{"success": false, "message": "数据不存在"})
			return
		}
		ctx.JSON(iris.Map{"success": true, "data": json.RawMessage(raw)})
	})
}
