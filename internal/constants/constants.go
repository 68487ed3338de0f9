package constants

// 验证码提供方常量
const (
	CaptchaProviderNone      = "none"
	CaptchaProviderImage     = "image"
	CaptchaProviderRecaptcha = "recaptcha"
	CaptchaProviderTurnstile = "turnstile"
	CaptchaProviderHCaptcha  = "hcaptcha"
)

// 第三方验证码校验地址
const (
	RecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	TurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	HCaptchaVerifyURL  = "https://api.hcaptcha.com/siteverify"
)

// 联系表单投递通道
const (
	NotifySinkLog      = "log"
	NotifySinkEmail    = "email"
	NotifySinkTelegram = "telegram"
)

// 限流后端
const (
	RateLimitBackendNone   = "none"
	RateLimitBackendMemory = "memory"
	RateLimitBackendRedis  = "redis"
)

// 联系表单字段名（与请求 JSON 字段一致）
const (
	ContactFieldName     = "name"
	ContactFieldEmail    = "email"
	ContactFieldComments = "comments"
	ContactFieldCaptcha  = "captcha"
)

// 联系表单用户可见文案
const (
	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Please enter a valid email address"
	MsgCommentsRequired = "Comments are required"
	MsgCaptchaRequired  = "Please complete the CAPTCHA"
	MsgSendSuccess      = "Message sent successfully!"
	MsgSendFailed       = "Failed to send message. Please try again."
	MsgCaptchaMissing   = "reCAPTCHA configuration is missing"
)

// 网关错误响应文案
const (
	ErrMsgInvalidCaptcha     = "Invalid CAPTCHA"
	ErrMsgInvalidSubmission  = "Invalid submission"
	ErrMsgProcessFailed      = "Failed to process request"
	ErrMsgTooManyRequests    = "Too many requests, please try again later"
	ErrMsgCaptchaUnavailable = "Captcha is unavailable"
	ErrMsgServiceUnavailable = "Service unavailable"
)

// 上下文键
const (
	ContextKeyRequestID = "request_id"
	HeaderRequestID     = "X-Request-ID"
)
