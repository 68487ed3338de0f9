package service

import (
	"fmt"
	"strings"

	"github.com/secureport/internal/config"
	"github.com/secureport/internal/constants"
)

const (
	captchaTimeoutDefaultMS = 5000
	captchaTimeoutMinMS     = 500
	captchaTimeoutMaxMS     = 10000
)

// CaptchaImageSetting 图片验证码配置
type CaptchaImageSetting struct {
	Length        int
	Width         int
	Height        int
	NoiseCount    int
	ShowLine      int
	ExpireSeconds int
	MaxStore      int
}

// CaptchaSetting 归一化后的验证码配置
type CaptchaSetting struct {
	Provider  string
	SiteKey   string
	SecretKey string
	VerifyURL string
	TimeoutMS int
	MinScore  float64
	Image     CaptchaImageSetting
}

// PublicCaptchaSetting 可下发给浏览器的验证码配置
type PublicCaptchaSetting struct {
	Provider        string `json:"provider"`
	SiteKey         string `json:"site_key,omitempty"`
	Configured      bool   `json:"configured"`
	Message         string `json:"message,omitempty"`
	ImageCaptchaURL string `json:"image_captcha_url,omitempty"`
}

// CaptchaSettingFromConfig 由配置文件构造验证码配置
func CaptchaSettingFromConfig(cfg config.CaptchaConfig) CaptchaSetting {
	return NormalizeCaptchaSetting(CaptchaSetting{
		Provider:  cfg.Provider,
		SiteKey:   cfg.SiteKey,
		SecretKey: cfg.SecretKey,
		VerifyURL: cfg.VerifyURL,
		TimeoutMS: cfg.TimeoutMS,
		MinScore:  cfg.MinScore,
		Image: CaptchaImageSetting{
			Length:        cfg.Image.Length,
			Width:         cfg.Image.Width,
			Height:        cfg.Image.Height,
			NoiseCount:    cfg.Image.NoiseCount,
			ShowLine:      cfg.Image.ShowLine,
			ExpireSeconds: cfg.Image.ExpireSeconds,
			MaxStore:      cfg.Image.MaxStore,
		},
	})
}

// NormalizeCaptchaSetting 归一化验证码配置
func NormalizeCaptchaSetting(setting CaptchaSetting) CaptchaSetting {
	setting.Provider = strings.ToLower(strings.TrimSpace(setting.Provider))
	switch setting.Provider {
	case constants.CaptchaProviderRecaptcha,
		constants.CaptchaProviderTurnstile,
		constants.CaptchaProviderHCaptcha,
		constants.CaptchaProviderImage,
		constants.CaptchaProviderNone:
	case "":
		setting.Provider = constants.CaptchaProviderRecaptcha
	}
	setting.SiteKey = strings.TrimSpace(setting.SiteKey)
	setting.SecretKey = strings.TrimSpace(setting.SecretKey)
	setting.VerifyURL = strings.TrimSpace(setting.VerifyURL)
	if setting.VerifyURL == "" {
		setting.VerifyURL = defaultVerifyURL(setting.Provider)
	}

	if setting.TimeoutMS <= 0 {
		setting.TimeoutMS = captchaTimeoutDefaultMS
	}
	if setting.TimeoutMS < captchaTimeoutMinMS {
		setting.TimeoutMS = captchaTimeoutMinMS
	}
	if setting.TimeoutMS > captchaTimeoutMaxMS {
		setting.TimeoutMS = captchaTimeoutMaxMS
	}
	if setting.MinScore < 0 || setting.MinScore > 1 {
		setting.MinScore = 0
	}

	if setting.Image.Length < 4 || setting.Image.Length > 8 {
		setting.Image.Length = 5
	}
	if setting.Image.Width < 100 {
		setting.Image.Width = 240
	}
	if setting.Image.Height < 40 {
		setting.Image.Height = 80
	}
	if setting.Image.NoiseCount < 0 {
		setting.Image.NoiseCount = 0
	}
	if setting.Image.ShowLine < 0 {
		setting.Image.ShowLine = 0
	}
	if setting.Image.ExpireSeconds < 30 || setting.Image.ExpireSeconds > 3600 {
		setting.Image.ExpireSeconds = 300
	}
	if setting.Image.MaxStore < 100 {
		setting.Image.MaxStore = 10240
	}
	return setting
}

// ValidateCaptchaSetting 校验验证码配置完整性
func ValidateCaptchaSetting(setting CaptchaSetting) error {
	switch setting.Provider {
	case constants.CaptchaProviderRecaptcha, constants.CaptchaProviderTurnstile, constants.CaptchaProviderHCaptcha:
		if setting.SiteKey == "" {
			return fmt.Errorf("%w: site key is empty", ErrCaptchaConfigInvalid)
		}
		if setting.SecretKey == "" {
			return fmt.Errorf("%w: secret key is empty", ErrCaptchaConfigInvalid)
		}
		if setting.VerifyURL == "" {
			return fmt.Errorf("%w: verify url is empty", ErrCaptchaConfigInvalid)
		}
		return nil
	case constants.CaptchaProviderImage:
		return nil
	case constants.CaptchaProviderNone:
		return fmt.Errorf("%w: captcha provider disabled", ErrCaptchaConfigInvalid)
	default:
		return fmt.Errorf("%w: unknown provider %q", ErrCaptchaConfigInvalid, setting.Provider)
	}
}

// IsRemote 是否为第三方 siteverify 类型提供方
func (s CaptchaSetting) IsRemote() bool {
	switch s.Provider {
	case constants.CaptchaProviderRecaptcha, constants.CaptchaProviderTurnstile, constants.CaptchaProviderHCaptcha:
		return true
	}
	return false
}

// Public 返回可公开下发的配置，不包含 secret
func (s CaptchaSetting) Public() PublicCaptchaSetting {
	public := PublicCaptchaSetting{Provider: s.Provider}
	switch {
	case s.Provider == constants.CaptchaProviderImage:
		public.Configured = true
		public.ImageCaptchaURL = "/api/captcha/image"
	case s.IsRemote() && s.SiteKey != "":
		public.SiteKey = s.SiteKey
		public.Configured = true
	default:
		public.Message = constants.MsgCaptchaMissing
	}
	return public
}

func defaultVerifyURL(provider string) string {
	switch provider {
	case constants.CaptchaProviderRecaptcha:
		return constants.RecaptchaVerifyURL
	case constants.CaptchaProviderTurnstile:
		return constants.TurnstileVerifyURL
	case constants.CaptchaProviderHCaptcha:
		return constants.HCaptchaVerifyURL
	default:
		return ""
	}
}
