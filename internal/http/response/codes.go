package response

import "net/http"

// 与 HTTP 状态码一致，网关响应直接使用真实状态码
const (
	CodeOK              = http.StatusOK
	CodeBadRequest      = http.StatusBadRequest
	CodeNotFound        = http.StatusNotFound
	CodeTooManyRequests = http.StatusTooManyRequests
	CodeInternal        = http.StatusInternalServerError
	CodeUnavailable     = http.StatusServiceUnavailable
)
