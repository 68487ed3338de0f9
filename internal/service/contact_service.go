package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/secureport/internal/models"

	"github.com/google/uuid"
)

// ContactService 联系表单网关核心流程：字段校验 -> 验证码校验 -> 投递
// 无重试、无去重，每次调用都是独立的一次校验与投递
type ContactService struct {
	validator *ContactValidator
	verifier  CaptchaVerifier
	sink      NotificationSink
	now       func() time.Time
}

// NewContactService 创建联系表单服务
func NewContactService(validator *ContactValidator, verifier CaptchaVerifier, sink NotificationSink) *ContactService {
	if validator == nil {
		validator = NewContactValidator()
	}
	return &ContactService{
		validator: validator,
		verifier:  verifier,
		sink:      sink,
		now:       time.Now,
	}
}

// Submit 处理一次提交
// 返回的 VerificationOutcome 仅用于日志诊断，调用方不应回传给客户端
func (s *ContactService) Submit(ctx context.Context, submission models.ContactSubmission, meta models.ContactMeta) (models.VerificationOutcome, error) {
	if fields := s.validator.ValidateFields(submission); !fields.Valid() {
		return models.VerificationOutcome{}, &ContactValidationError{Fields: fields}
	}
	if s.verifier == nil {
		return models.VerificationOutcome{}, fmt.Errorf("%w: verifier not configured", ErrCaptchaConfigInvalid)
	}

	outcome, err := s.verifier.Verify(ctx, submission.CaptchaToken, meta.ClientIP)
	if err != nil {
		return outcome, err
	}
	if !outcome.Success {
		return outcome, ErrCaptchaInvalid
	}

	if s.sink == nil {
		return outcome, nil
	}
	clean := s.validator.Sanitize(submission)
	msg := models.ContactMessage{
		ID:         uuid.NewString(),
		RequestID:  meta.RequestID,
		Name:       clean.Name,
		Email:      clean.Email,
		Comments:   clean.Comments,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		Referer:    meta.Referer,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.sink.Notify(ctx, msg); err != nil {
		if errors.Is(err, ErrNotifySendFailed) {
			return outcome, err
		}
		return outcome, fmt.Errorf("%w: %w", ErrNotifySendFailed, err)
	}
	return outcome, nil
}
