package public

import (
	"errors"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/handlers/shared"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/service"

	"github.com/gin-gonic/gin"
)

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		shared.RespondError(c, response.CodeUnavailable, constants.ErrMsgCaptchaUnavailable, service.ErrCaptchaConfigInvalid)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			shared.RespondError(c, response.CodeNotFound, constants.ErrMsgCaptchaUnavailable, nil)
		default:
			shared.RespondError(c, response.CodeInternal, constants.ErrMsgProcessFailed, err)
		}
		return
	}

	c.Header("Cache-Control", "no-store")
	response.OK(c, challenge)
}
