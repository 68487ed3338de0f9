package models

import (
	"strings"
	"time"
)

// ContactSubmission 联系表单提交载荷
// 仅在一次请求内存在，不做持久化
type ContactSubmission struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Comments     string `json:"comments"`
	CaptchaToken string `json:"captchaToken"`
}

// Trimmed 返回去除首尾空白后的副本
func (s ContactSubmission) Trimmed() ContactSubmission {
	return ContactSubmission{
		Name:         strings.TrimSpace(s.Name),
		Email:        strings.TrimSpace(s.Email),
		Comments:     strings.TrimSpace(s.Comments),
		CaptchaToken: strings.TrimSpace(s.CaptchaToken),
	}
}

// ValidationResult 字段名到错误文案的映射
type ValidationResult map[string]string

// Valid 没有任何字段错误
func (r ValidationResult) Valid() bool {
	return len(r) == 0
}

// Has 指定字段是否存在错误
func (r ValidationResult) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// VerificationOutcome 验证码校验结果
type VerificationOutcome struct {
	Success     bool     `json:"success"`
	ErrorCodes  []string `json:"error_codes,omitempty"`
	Hostname    string   `json:"hostname,omitempty"`
	ChallengeTS string   `json:"challenge_ts,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action,omitempty"`
}

// ContactMessage 校验通过后投递给通知通道的消息
type ContactMessage struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Comments   string    `json:"comments"`
	ClientIP   string    `json:"client_ip,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	Referer    string    `json:"referer,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ContactMeta 请求侧元数据
type ContactMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referer   string
}
