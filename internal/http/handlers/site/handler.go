// Package site 服务端渲染页面与无脚本表单提交。
package site

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/contactform"
	"github.com/secureport/internal/http/handlers/shared"
	"github.com/secureport/internal/logger"
	"github.com/secureport/internal/models"
	"github.com/secureport/internal/provider"
	"github.com/secureport/internal/service"
	"github.com/secureport/internal/view"

	"github.com/gin-gonic/gin"
)

// Handler 页面处理器
type Handler struct {
	*provider.Container
}

// New 创建页面处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

// contactForm POST /contact 表单字段
// 不同验证码组件回传 token 的字段名不同，依次取第一个非空值
type contactForm struct {
	contactform.Fields
	CaptchaToken       string `form:"captcha_token"`
	RecaptchaResponse  string `form:"g-recaptcha-response"`
	TurnstileResponse  string `form:"cf-turnstile-response"`
	HCaptchaResponse   string `form:"h-captcha-response"`
	ImageCaptchaID     string `form:"captcha_id"`
	ImageCaptchaAnswer string `form:"captcha_code"`
}

func (f contactForm) token() string {
	for _, candidate := range []string{f.CaptchaToken, f.RecaptchaResponse, f.TurnstileResponse, f.HCaptchaResponse} {
		if token := strings.TrimSpace(candidate); token != "" {
			return token
		}
	}
	return service.ImageToken(f.ImageCaptchaID, f.ImageCaptchaAnswer)
}

// Index 渲染首页
func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, contactform.Snapshot{State: contactform.StateIdle})
}

// SubmitContact 无脚本表单提交，复用表单控制器并在进程内调用网关
func (h *Handler) SubmitContact(c *gin.Context) {
	var form contactForm
	if err := c.ShouldBind(&form); err != nil {
		shared.RequestLog(c).Warnw("site_contact_bind_failed", "error", err)
	}

	meta := shared.ContactMeta(c)
	controller := contactform.New(h.localGateway(meta), h.ContactValidator)
	snap := controller.Submit(c.Request.Context(), form.Fields, form.token())

	status := http.StatusOK
	switch snap.State {
	case contactform.StateInvalid:
		status = http.StatusBadRequest
	case contactform.StateFailed:
		status = snap.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusInternalServerError
		}
	}
	h.render(c, status, snap)
}

// localGateway 进程内网关，状态码与 POST /api/contact 一致
func (h *Handler) localGateway(meta models.ContactMeta) contactform.Gateway {
	return contactform.GatewayFunc(func(ctx context.Context, submission models.ContactSubmission) (int, error) {
		if h.ContactService == nil {
			return shared.ContactError(service.ErrCaptchaConfigInvalid).Code, nil
		}
		if _, err := h.ContactService.Submit(ctx, submission, meta); err != nil {
			appErr := shared.ContactError(err)
			logger.SW("request_id", meta.RequestID).Warnw("site_contact_rejected", "code", appErr.Code, "error", err)
			return appErr.Code, nil
		}
		return http.StatusOK, nil
	})
}

func (h *Handler) render(c *gin.Context, status int, snap contactform.Snapshot) {
	page := view.Page{
		Site:       h.Site,
		Form:       snap,
		GatewayURL: h.gatewayURL(),
	}
	if h.CaptchaService != nil {
		page.Captcha = h.CaptchaService.PublicSetting()
	} else {
		page.Captcha = service.PublicCaptchaSetting{Message: constants.MsgCaptchaMissing}
	}

	var buf bytes.Buffer
	if err := h.Renderer.RenderPage(&buf, page); err != nil {
		shared.RequestLog(c).Errorw("site_render_failed", "error", err)
		c.String(http.StatusInternalServerError, constants.ErrMsgProcessFailed)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) gatewayURL() string {
	if h.Config != nil && h.Config.Site.GatewayURL != "" {
		return h.Config.Site.GatewayURL
	}
	return "/api/contact"
}
