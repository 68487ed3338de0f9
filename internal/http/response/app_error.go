package response

// AppError 统一错误包装
// Message 面向客户端，Err 仅用于服务端日志
type AppError struct {
	Code    int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithFields 附加逐字段错误
func (e *AppError) WithFields(fields map[string]string) *AppError {
	e.Fields = fields
	return e
}
