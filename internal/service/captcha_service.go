package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"

	"github.com/mojocn/base64Captcha"
)

const (
	captchaImageSource      = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	captchaResponseMaxBytes = 64 << 10
	// 图片验证码 token 格式为 "<captcha_id>:<captcha_code>"
	captchaImageTokenSep = ":"
)

// CaptchaVerifier 验证码校验能力
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, clientIP string) (models.VerificationOutcome, error)
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// siteVerifyResponse reCAPTCHA / Turnstile / hCaptcha 共用的响应结构
type siteVerifyResponse struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// CaptchaService 验证码服务
// 第三方提供方统一走 siteverify 协议（表单 POST secret/response/remoteip）
// 图片模式默认使用本地内存 store，不依赖第三方
type CaptchaService struct {
	setting    CaptchaSetting
	httpClient *http.Client

	imageOnce  sync.Once
	imageStore base64Captcha.Store
}

// NewCaptchaService 创建验证码服务，httpClient 为空时按超时配置创建
func NewCaptchaService(setting CaptchaSetting, httpClient *http.Client) *CaptchaService {
	setting = NormalizeCaptchaSetting(setting)
	if httpClient == nil {
		httpClient = &http.Client{Timeout: time.Duration(setting.TimeoutMS) * time.Millisecond}
	}
	return &CaptchaService{
		setting:    setting,
		httpClient: httpClient,
	}
}

// UseImageStore 替换图片验证码存储（多实例部署时使用 Redis）
func (s *CaptchaService) UseImageStore(store base64Captcha.Store) *CaptchaService {
	if store != nil {
		s.imageOnce.Do(func() {})
		s.imageStore = store
	}
	return s
}

// Setting 当前验证码配置
func (s *CaptchaService) Setting() CaptchaSetting {
	return s.setting
}

// PublicSetting 获取公开可下发配置
func (s *CaptchaService) PublicSetting() PublicCaptchaSetting {
	return s.setting.Public()
}

// Timeout 单次校验超时
func (s *CaptchaService) Timeout() time.Duration {
	return time.Duration(s.setting.TimeoutMS) * time.Millisecond
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if s.setting.Provider != constants.CaptchaProviderImage {
		return nil, ErrCaptchaConfigInvalid
	}
	image := s.setting.Image
	driver := base64Captcha.NewDriverString(
		image.Height,
		image.Width,
		image.NoiseCount,
		image.ShowLine,
		image.Length,
		captchaImageSource,
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, s.store())
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate image captcha: %w", err)
	}
	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// ImageToken 组合图片验证码 token
func ImageToken(captchaID, code string) string {
	captchaID = strings.TrimSpace(captchaID)
	code = strings.TrimSpace(code)
	if captchaID == "" || code == "" {
		return ""
	}
	return captchaID + captchaImageTokenSep + code
}

// Verify 校验验证码 token
// 提供方明确判定失败时返回 ErrCaptchaInvalid，网络/解析/配置类问题返回其余错误
func (s *CaptchaService) Verify(ctx context.Context, token, clientIP string) (models.VerificationOutcome, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.VerificationOutcome{}, ErrCaptchaRequired
	}

	switch {
	case s.setting.Provider == constants.CaptchaProviderImage:
		return s.verifyImage(token)
	case s.setting.IsRemote():
		return s.verifySite(ctx, token, strings.TrimSpace(clientIP))
	default:
		return models.VerificationOutcome{}, fmt.Errorf("%w: provider %q", ErrCaptchaConfigInvalid, s.setting.Provider)
	}
}

func (s *CaptchaService) verifyImage(token string) (models.VerificationOutcome, error) {
	captchaID, code, ok := strings.Cut(token, captchaImageTokenSep)
	if !ok || strings.TrimSpace(captchaID) == "" || strings.TrimSpace(code) == "" {
		return models.VerificationOutcome{ErrorCodes: []string{"invalid-input-response"}}, ErrCaptchaInvalid
	}
	if !s.store().Verify(strings.TrimSpace(captchaID), strings.TrimSpace(code), true) {
		return models.VerificationOutcome{ErrorCodes: []string{"invalid-input-response"}}, ErrCaptchaInvalid
	}
	return models.VerificationOutcome{Success: true}, nil
}

func (s *CaptchaService) verifySite(ctx context.Context, token, clientIP string) (models.VerificationOutcome, error) {
	if s.setting.SecretKey == "" || s.setting.VerifyURL == "" {
		return models.VerificationOutcome{}, fmt.Errorf("%w: secret key or verify url missing", ErrCaptchaConfigInvalid)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.Timeout())
	defer cancel()

	form := url.Values{}
	form.Set("secret", s.setting.SecretKey)
	form.Set("response", token)
	if clientIP != "" {
		form.Set("remoteip", clientIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.setting.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return models.VerificationOutcome{}, fmt.Errorf("%w: build request: %v", ErrCaptchaVerifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return models.VerificationOutcome{}, fmt.Errorf("%w: %v", ErrCaptchaVerifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, captchaResponseMaxBytes))
		return models.VerificationOutcome{}, fmt.Errorf("%w: provider status %d", ErrCaptchaVerifyFailed, resp.StatusCode)
	}

	var result siteVerifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, captchaResponseMaxBytes)).Decode(&result); err != nil {
		return models.VerificationOutcome{}, fmt.Errorf("%w: decode response: %v", ErrCaptchaVerifyFailed, err)
	}

	outcome := models.VerificationOutcome{
		Success:     result.Success,
		ErrorCodes:  result.ErrorCodes,
		Hostname:    result.Hostname,
		ChallengeTS: result.ChallengeTS,
		Score:       result.Score,
		Action:      result.Action,
	}
	if !result.Success {
		return outcome, ErrCaptchaInvalid
	}
	// reCAPTCHA v3 返回 score，低于阈值视为校验失败
	if s.setting.MinScore > 0 && result.Score != nil && *result.Score < s.setting.MinScore {
		outcome.Success = false
		outcome.ErrorCodes = append(outcome.ErrorCodes, "score-too-low")
		return outcome, ErrCaptchaInvalid
	}
	return outcome, nil
}

func (s *CaptchaService) store() base64Captcha.Store {
	s.imageOnce.Do(func() {
		s.imageStore = base64Captcha.NewMemoryStore(
			s.setting.Image.MaxStore,
			time.Duration(s.setting.Image.ExpireSeconds)*time.Second,
		)
	})
	return s.imageStore
}
