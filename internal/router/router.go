package router

import (
	"strings"

	"github.com/secureport/internal/cache"
	"github.com/secureport/internal/config"
	publichandlers "github.com/secureport/internal/http/handlers/public"
	sitehandlers "github.com/secureport/internal/http/handlers/site"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/logger"
	"github.com/secureport/internal/provider"
	"github.com/secureport/internal/view"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.App.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warnw("router_trusted_proxies_invalid", "error", err)
	}

	// 初始化 Handler（页面 / 公开接口）
	siteHandler := sitehandlers.New(c)
	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sp"
	}
	contactLimit := ContactRateLimitMiddleware(cfg.Security.ContactRateLimit, cache.Client(), redisPrefix)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(SecurityHeadersMiddleware(cfg.Security.Headers, cfg.Site.GatewayURL))
	r.Use(CORSMiddleware(cfg.CORS))

	// 内嵌静态资源
	r.StaticFS("/static", view.StaticFS())

	// 页面
	r.GET("/", siteHandler.Index)
	r.POST("/contact", contactLimit, siteHandler.SubmitContact)

	// API 路由组
	api := r.Group("/api")
	{
		api.POST("/contact", contactLimit, publicHandler.SubmitContact)
		api.GET("/public/config", publicHandler.GetConfig)
		api.GET("/captcha/image", publicHandler.GetImageCaptcha)
	}

	// 健康检查
	r.GET("/healthz", publicHandler.Health)

	r.NoRoute(func(ctx *gin.Context) {
		response.NotFound(ctx, "Not found")
	})
	return r
}
