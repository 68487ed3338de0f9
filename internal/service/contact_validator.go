package service

import (
	"errors"
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// looseEmailPattern 仅要求 x@y.z 形态，不做 RFC 校验
var looseEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type contactFields struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,looseemail,max=254"`
	Comments string `json:"comments" validate:"required,max=5000"`
}

var contactFieldMessages = map[string]map[string]string{
	constants.ContactFieldName: {
		"required": constants.MsgNameRequired,
		"max":      "Name is too long",
	},
	constants.ContactFieldEmail: {
		"required":   constants.MsgEmailRequired,
		"looseemail": constants.MsgEmailInvalid,
		"max":        constants.MsgEmailInvalid,
	},
	constants.ContactFieldComments: {
		"required": constants.MsgCommentsRequired,
		"max":      "Comments are too long",
	},
}

// ContactValidator 联系表单字段校验与清洗
type ContactValidator struct {
	validate *validator.Validate
	policy   *bluemonday.Policy
}

// NewContactValidator 创建联系表单校验器
func NewContactValidator() *ContactValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return looseEmailPattern.MatchString(fl.Field().String())
	})
	return &ContactValidator{
		validate: validate,
		policy:   bluemonday.StrictPolicy(),
	}
}

// ValidateFields 校验 name / email / comments，输入会先去除首尾空白
func (v *ContactValidator) ValidateFields(submission models.ContactSubmission) models.ValidationResult {
	submission = submission.Trimmed()
	result := models.ValidationResult{}
	err := v.validate.Struct(contactFields{
		Name:     submission.Name,
		Email:    submission.Email,
		Comments: submission.Comments,
	})
	if err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			result[constants.ContactFieldComments] = constants.MsgSendFailed
			return result
		}
		for _, fe := range fieldErrs {
			field := fe.Field()
			if result.Has(field) {
				continue
			}
			msg, ok := contactFieldMessages[field][fe.Tag()]
			if !ok {
				msg = "Invalid value"
			}
			result[field] = msg
		}
	}

	// 仅含标签的输入清洗后为空，同样视为未填写
	clean := v.Sanitize(submission)
	for field, value := range map[string]string{
		constants.ContactFieldName:     clean.Name,
		constants.ContactFieldEmail:    clean.Email,
		constants.ContactFieldComments: clean.Comments,
	} {
		if value == "" && !result.Has(field) {
			result[field] = contactFieldMessages[field]["required"]
		}
	}
	return result
}

// Validate 校验字段并要求验证码 token 存在
func (v *ContactValidator) Validate(submission models.ContactSubmission) models.ValidationResult {
	result := v.ValidateFields(submission)
	if strings.TrimSpace(submission.CaptchaToken) == "" {
		result[constants.ContactFieldCaptcha] = constants.MsgCaptchaRequired
	}
	return result
}

// Sanitize 去除字段中的 HTML 标签，保留纯文本
func (v *ContactValidator) Sanitize(submission models.ContactSubmission) models.ContactSubmission {
	submission = submission.Trimmed()
	submission.Name = v.plain(submission.Name)
	submission.Email = v.plain(submission.Email)
	submission.Comments = v.plain(submission.Comments)
	return submission
}

func (v *ContactValidator) plain(value string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(value)))
}
