package provider

import (
	"fmt"
	"time"

	"github.com/secureport/internal/cache"
	"github.com/secureport/internal/config"
	"github.com/secureport/internal/content"
	"github.com/secureport/internal/logger"
	"github.com/secureport/internal/service"
	"github.com/secureport/internal/view"
)

// Container 依赖注入容器
type Container struct {
	Config *config.Config

	// Services
	CaptchaService   *service.CaptchaService
	ContactValidator *service.ContactValidator
	ContactService   *service.ContactService
	NotificationSink service.NotificationSink

	// Site
	Site     *content.Site
	Renderer *view.Renderer
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	c := &Container{Config: cfg}

	// 1. 站点内容与模板
	if err := c.initSite(); err != nil {
		return nil, err
	}

	// 2. 初始化 Services
	if err := c.initServices(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initSite() error {
	site, err := content.Load(c.Config.Site.ContentFile)
	if err != nil {
		return fmt.Errorf("load site content: %w", err)
	}
	if c.Config.Site.Title != "" {
		site.Title = c.Config.Site.Title
	}
	if c.Config.Site.Description != "" {
		site.Description = c.Config.Site.Description
	}
	c.Site = site.ApplyImagePolicy(c.Config.Site.Production, c.Config.Site.PlaceholderImage)

	renderer, err := view.New(nil)
	if err != nil {
		return err
	}
	c.Renderer = renderer
	return nil
}

func (c *Container) initServices() error {
	captchaSetting := service.CaptchaSettingFromConfig(c.Config.Captcha)
	if err := service.ValidateCaptchaSetting(captchaSetting); err != nil {
		// 缺少 key 时仍然启动，页面提示配置缺失，提交统一返回 500
		logger.Warnw("provider_captcha_setting_incomplete", "provider", captchaSetting.Provider, "error", err)
	}
	c.CaptchaService = service.NewCaptchaService(captchaSetting, nil)
	ttl := time.Duration(captchaSetting.Image.ExpireSeconds) * time.Second
	if store := cache.NewCaptchaStore(ttl); store != nil {
		c.CaptchaService.UseImageStore(store)
	}

	sink, err := service.NewNotificationSink(c.Config.Notify, logger.Named("contact"), nil)
	if err != nil {
		return fmt.Errorf("init notification sink: %w", err)
	}
	c.NotificationSink = sink

	c.ContactValidator = service.NewContactValidator()
	c.ContactService = service.NewContactService(c.ContactValidator, c.CaptchaService, c.NotificationSink)
	logger.Infow("provider_services_ready",
		"captcha_provider", captchaSetting.Provider,
		"notify_sink", sink.Name(),
		"redis_enabled", cache.Enabled(),
	)
	return nil
}
