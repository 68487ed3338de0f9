package shared

import (
	"errors"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/models"
	"github.com/secureport/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

var contactErrorRules = []mappedHandlerError{
	{target: service.ErrCaptchaRequired, code: response.CodeBadRequest, msg: constants.ErrMsgInvalidCaptcha},
	{target: service.ErrCaptchaInvalid, code: response.CodeBadRequest, msg: constants.ErrMsgInvalidCaptcha},
}

// ContactError 将联系表单提交错误映射为对外响应
// 未命中规则的错误（上游超时、配置缺失、投递失败等）一律 500
func ContactError(err error) *response.AppError {
	var validationErr *service.ContactValidationError
	if errors.As(err, &validationErr) {
		return response.WrapError(response.CodeBadRequest, constants.ErrMsgInvalidSubmission, err).
			WithFields(validationErr.Fields)
	}
	for _, rule := range contactErrorRules {
		if errors.Is(err, rule.target) {
			return response.WrapError(rule.code, rule.msg, err)
		}
	}
	return response.WrapError(response.CodeInternal, constants.ErrMsgProcessFailed, err)
}

// ContactMeta 从请求中提取投递所需的元数据
func ContactMeta(c *gin.Context) models.ContactMeta {
	meta := models.ContactMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referer:   c.Request.Referer(),
	}
	if value, ok := c.Get(constants.ContextKeyRequestID); ok {
		meta.RequestID, _ = value.(string)
	}
	return meta
}
