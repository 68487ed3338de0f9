package service

import (
	"errors"

	"github.com/secureport/internal/models"
)

// 验证码相关错误
var (
	ErrCaptchaRequired      = errors.New("captcha token required")
	ErrCaptchaInvalid       = errors.New("captcha token invalid")
	ErrCaptchaVerifyFailed  = errors.New("captcha verify request failed")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")
)

// 联系表单相关错误
var (
	ErrContactInvalid = errors.New("contact submission invalid")
)

// 通知投递相关错误
var (
	ErrNotifySinkUnknown       = errors.New("notify sink unknown")
	ErrNotifySinkNotConfigured = errors.New("notify sink not configured")
	ErrNotifySendFailed        = errors.New("notify send failed")
	ErrEmailRecipientRejected  = errors.New("email recipient rejected")
)

// ContactValidationError 携带逐字段错误信息的校验错误
type ContactValidationError struct {
	Fields models.ValidationResult
}

func (e *ContactValidationError) Error() string {
	return ErrContactInvalid.Error()
}

func (e *ContactValidationError) Unwrap() error {
	return ErrContactInvalid
}
