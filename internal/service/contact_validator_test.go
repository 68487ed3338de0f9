package service

import (
	"strings"
	"testing"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"

	"github.com/stretchr/testify/assert"
)

func validSubmission() models.ContactSubmission {
	return models.ContactSubmission{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Comments:     "We need a penetration test for our cloud workloads.",
		CaptchaToken: "token-abc",
	}
}

func TestValidateFieldsRequired(t *testing.T) {
	v := NewContactValidator()
	cases := []struct {
		name   string
		mutate func(*models.ContactSubmission)
		field  string
		msg    string
	}{
		{name: "missing name", mutate: func(s *models.ContactSubmission) { s.Name = "" }, field: constants.ContactFieldName, msg: constants.MsgNameRequired},
		{name: "blank name", mutate: func(s *models.ContactSubmission) { s.Name = "   " }, field: constants.ContactFieldName, msg: constants.MsgNameRequired},
		{name: "missing email", mutate: func(s *models.ContactSubmission) { s.Email = "" }, field: constants.ContactFieldEmail, msg: constants.MsgEmailRequired},
		{name: "missing comments", mutate: func(s *models.ContactSubmission) { s.Comments = "\n\t" }, field: constants.ContactFieldComments, msg: constants.MsgCommentsRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := validSubmission()
			tc.mutate(&sub)
			result := v.ValidateFields(sub)
			assert.Equal(t, tc.msg, result[tc.field])
			assert.Len(t, result, 1)
		})
	}
}

func TestValidateFieldsEmailShape(t *testing.T) {
	v := NewContactValidator()
	invalid := []string{"plainaddress", "missing-at.example.com", "user@nodot", "@example.com", "user@.", "a b@example.com"}
	for _, email := range invalid {
		sub := validSubmission()
		sub.Email = email
		result := v.ValidateFields(sub)
		assert.Equal(t, constants.MsgEmailInvalid, result[constants.ContactFieldEmail], "email %q", email)
	}

	valid := []string{"a@b.c", "first.last+tag@sub.example.co.uk", "  padded@example.org  "}
	for _, email := range valid {
		sub := validSubmission()
		sub.Email = email
		assert.True(t, v.ValidateFields(sub).Valid(), "email %q", email)
	}
}

func TestValidateFieldsMaxLength(t *testing.T) {
	v := NewContactValidator()
	sub := validSubmission()
	sub.Comments = strings.Repeat("x", 5001)
	result := v.ValidateFields(sub)
	assert.Equal(t, "Comments are too long", result[constants.ContactFieldComments])
}

func TestValidateRequiresCaptcha(t *testing.T) {
	v := NewContactValidator()
	sub := validSubmission()
	sub.CaptchaToken = ""

	assert.True(t, v.ValidateFields(sub).Valid())
	result := v.Validate(sub)
	assert.Equal(t, constants.MsgCaptchaRequired, result[constants.ContactFieldCaptcha])
}

func TestValidateReportsEveryField(t *testing.T) {
	result := NewContactValidator().Validate(models.ContactSubmission{})
	assert.Equal(t, models.ValidationResult{
		constants.ContactFieldName:     constants.MsgNameRequired,
		constants.ContactFieldEmail:    constants.MsgEmailRequired,
		constants.ContactFieldComments: constants.MsgCommentsRequired,
		constants.ContactFieldCaptcha:  constants.MsgCaptchaRequired,
	}, result)
}

func TestSanitizeStripsMarkup(t *testing.T) {
	v := NewContactValidator()
	got := v.Sanitize(models.ContactSubmission{
		Name:     " <b>Eve</b> ",
		Email:    "eve@example.com",
		Comments: `Hello <script>alert(1)</script>R&D team, <a href="http://x">click</a>`,
	})
	assert.Equal(t, "Eve", got.Name)
	assert.Equal(t, "Hello R&D team, click", got.Comments)
}

func TestValidateFieldsMarkupOnly(t *testing.T) {
	v := NewContactValidator()
	sub := validSubmission()
	sub.Name = "<b></b>"
	sub.Comments = "<script>alert(1)</script>"

	result := v.ValidateFields(sub)
	assert.Equal(t, models.ValidationResult{
		constants.ContactFieldName:     constants.MsgNameRequired,
		constants.ContactFieldComments: constants.MsgCommentsRequired,
	}, result)

	sub = validSubmission()
	sub.Name = "<b>Eve</b>"
	assert.True(t, v.ValidateFields(sub).Valid())
}
