package public

import (
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/handlers/shared"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/models"
	"github.com/secureport/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitContact 联系表单网关
// 请求体无法解析时与其他异常一样返回 500
func (h *Handler) SubmitContact(c *gin.Context) {
	var req models.ContactSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		shared.RespondAppError(c, shared.ContactError(err))
		return
	}
	if h.ContactService == nil {
		shared.RespondError(c, response.CodeInternal, constants.ErrMsgProcessFailed, service.ErrCaptchaConfigInvalid)
		return
	}

	meta := shared.ContactMeta(c)
	outcome, err := h.ContactService.Submit(c.Request.Context(), req, meta)
	if err != nil {
		if len(outcome.ErrorCodes) > 0 {
			shared.RequestLog(c).Infow("contact_captcha_rejected", "error_codes", outcome.ErrorCodes)
		}
		shared.RespondAppError(c, shared.ContactError(err))
		return
	}

	shared.RequestLog(c).Infow("contact_submission_accepted", "client_ip", meta.ClientIP)
	response.Success(c)
}
