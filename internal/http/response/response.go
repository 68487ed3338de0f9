package response

import (
	"github.com/secureport/internal/constants"

	"github.com/gin-gonic/gin"
)

// SuccessBody 联系表单成功响应
type SuccessBody struct {
	Success bool `json:"success"`
}

// ErrorBody 统一错误响应
type ErrorBody struct {
	Error     string            `json:"error"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Success 成功响应 {"success":true}
func Success(c *gin.Context) {
	c.JSON(CodeOK, SuccessBody{Success: true})
}

// OK 返回任意数据
func OK(c *gin.Context, data interface{}) {
	c.JSON(CodeOK, data)
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	c.JSON(statusCode, ErrorBody{
		Error:     msg,
		RequestID: requestID(c),
	})
}

// ErrorWithFields 错误响应（带字段错误）
func ErrorWithFields(c *gin.Context, statusCode int, msg string, fields map[string]string) {
	c.JSON(statusCode, ErrorBody{
		Error:     msg,
		RequestID: requestID(c),
		Fields:    fields,
	})
}

// Abort 错误响应并终止后续中间件
func Abort(c *gin.Context, statusCode int, msg string) {
	Error(c, statusCode, msg)
	c.Abort()
}

// NotFound 404响应
func NotFound(c *gin.Context, msg string) {
	Error(c, CodeNotFound, msg)
}

func requestID(c *gin.Context) string {
	if c == nil {
		return ""
	}
	if value, ok := c.Get(constants.ContextKeyRequestID); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
