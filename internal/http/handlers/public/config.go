package public

import (
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/service"

	"github.com/gin-gonic/gin"
)

// PublicConfig 浏览器脚本所需的公开配置
type PublicConfig struct {
	Captcha    service.PublicCaptchaSetting `json:"captcha"`
	GatewayURL string                       `json:"gateway_url"`
}

// GetConfig 获取公开配置，不包含任何密钥
func (h *Handler) GetConfig(c *gin.Context) {
	cfg := PublicConfig{GatewayURL: h.gatewayURL()}
	if h.CaptchaService != nil {
		cfg.Captcha = h.CaptchaService.PublicSetting()
	} else {
		cfg.Captcha = service.NormalizeCaptchaSetting(service.CaptchaSetting{}).Public()
	}
	response.OK(c, cfg)
}

func (h *Handler) gatewayURL() string {
	if h.Config != nil && h.Config.Site.GatewayURL != "" {
		return h.Config.Site.GatewayURL
	}
	return "/api/contact"
}
