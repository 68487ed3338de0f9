package shared

import (
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/http/response"
	"github.com/secureport/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get(constants.ContextKeyRequestID); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, msg string, err error) {
	RespondAppError(c, response.WrapError(code, msg, err))
}

// RespondAppError 按 AppError 输出响应，原始错误只进日志。
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err != nil {
		log := RequestLog(c)
		if appErr.Code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		} else {
			log.Warnw("handler_rejected", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err)
		}
	}
	if len(appErr.Fields) > 0 {
		response.ErrorWithFields(c, appErr.Code, appErr.Message, appErr.Fields)
		return
	}
	response.Error(c, appErr.Code, appErr.Message)
}
