package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	mu      sync.Mutex
	calls   []string
	outcome models.VerificationOutcome
	err     error
}

func (s *stubVerifier) Verify(_ context.Context, token, _ string) (models.VerificationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, token)
	return s.outcome, s.err
}

type recordingSink struct {
	mu       sync.Mutex
	messages []models.ContactMessage
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Notify(_ context.Context, msg models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

func TestContactSubmitInvalidFieldsSkipsVerification(t *testing.T) {
	verifier := &stubVerifier{outcome: models.VerificationOutcome{Success: true}}
	sink := &recordingSink{}
	svc := NewContactService(nil, verifier, sink)

	sub := validSubmission()
	sub.Email = "not-an-email"
	_, err := svc.Submit(context.Background(), sub, models.ContactMeta{})

	var validationErr *ContactValidationError
	require.ErrorAs(t, err, &validationErr)
	require.ErrorIs(t, err, ErrContactInvalid)
	assert.Equal(t, constants.MsgEmailInvalid, validationErr.Fields[constants.ContactFieldEmail])
	assert.Empty(t, verifier.calls)
	assert.Empty(t, sink.messages)
}

func TestContactSubmitCaptchaRejected(t *testing.T) {
	verifier := &stubVerifier{
		outcome: models.VerificationOutcome{ErrorCodes: []string{"timeout-or-duplicate"}},
		err:     ErrCaptchaInvalid,
	}
	sink := &recordingSink{}
	svc := NewContactService(nil, verifier, sink)

	outcome, err := svc.Submit(context.Background(), validSubmission(), models.ContactMeta{})
	require.ErrorIs(t, err, ErrCaptchaInvalid)
	assert.Equal(t, []string{"timeout-or-duplicate"}, outcome.ErrorCodes)
	assert.Empty(t, sink.messages)
}

func TestContactSubmitUnsuccessfulOutcomeWithoutError(t *testing.T) {
	svc := NewContactService(nil, &stubVerifier{}, &recordingSink{})
	_, err := svc.Submit(context.Background(), validSubmission(), models.ContactMeta{})
	require.ErrorIs(t, err, ErrCaptchaInvalid)
}

func TestContactSubmitDeliversSanitizedMessage(t *testing.T) {
	verifier := &stubVerifier{outcome: models.VerificationOutcome{Success: true}}
	sink := &recordingSink{}
	svc := NewContactService(nil, verifier, sink)

	sub := validSubmission()
	sub.Comments = "<i>Urgent</i> incident response"
	meta := models.ContactMeta{RequestID: "req-1", ClientIP: "203.0.113.9", UserAgent: "test-agent"}
	_, err := svc.Submit(context.Background(), sub, meta)
	require.NoError(t, err)

	require.Len(t, sink.messages, 1)
	msg := sink.messages[0]
	assert.Equal(t, "Urgent incident response", msg.Comments)
	assert.Equal(t, "Ada Lovelace", msg.Name)
	assert.Equal(t, "req-1", msg.RequestID)
	assert.Equal(t, "203.0.113.9", msg.ClientIP)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.ReceivedAt.IsZero())
	assert.Equal(t, []string{"token-abc"}, verifier.calls)
}

func TestContactSubmitTwiceIsTwoIndependentAttempts(t *testing.T) {
	verifier := &stubVerifier{outcome: models.VerificationOutcome{Success: true}}
	sink := &recordingSink{}
	svc := NewContactService(nil, verifier, sink)

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(context.Background(), validSubmission(), models.ContactMeta{})
		require.NoError(t, err)
	}

	assert.Len(t, verifier.calls, 2)
	require.Len(t, sink.messages, 2)
	assert.NotEqual(t, sink.messages[0].ID, sink.messages[1].ID)
}

func TestContactSubmitSinkFailure(t *testing.T) {
	verifier := &stubVerifier{outcome: models.VerificationOutcome{Success: true}}
	sink := &recordingSink{err: errors.New("smtp down")}
	svc := NewContactService(nil, verifier, sink)

	_, err := svc.Submit(context.Background(), validSubmission(), models.ContactMeta{})
	require.ErrorIs(t, err, ErrNotifySendFailed)
}

func TestContactSubmitTransportFailurePassesThrough(t *testing.T) {
	verifier := &stubVerifier{err: ErrCaptchaVerifyFailed}
	sink := &recordingSink{}
	svc := NewContactService(nil, verifier, sink)

	_, err := svc.Submit(context.Background(), validSubmission(), models.ContactMeta{})
	require.ErrorIs(t, err, ErrCaptchaVerifyFailed)
	assert.Empty(t, sink.messages)
}
