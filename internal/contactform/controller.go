// Package contactform 联系表单前端控制器：字段状态、客户端校验与提交编排。
// 服务端渲染页面与 contactctl 命令行共用同一套状态机。
package contactform

import (
	"context"
	"sync"

	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"
	"github.com/secureport/internal/service"
)

// State 表单状态
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateInvalid    State = "invalid"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Fields 用户可编辑字段
type Fields struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Comments string `json:"comments" form:"comments"`
}

// Snapshot 控制器状态副本，用于渲染
type Snapshot struct {
	State      State
	Fields     Fields
	Errors     models.ValidationResult
	Message    string
	StatusCode int
	HasToken   bool
}

// Submitting 提交中，按钮应禁用
func (s Snapshot) Submitting() bool {
	return s.State == StateSubmitting
}

// Controller 联系表单控制器，并发安全
// 每次用户交互只做一次状态迁移，提交期间重复提交直接忽略
type Controller struct {
	mu        sync.Mutex
	gateway   Gateway
	validator *service.ContactValidator

	state      State
	fields     Fields
	token      string
	errors     models.ValidationResult
	message    string
	statusCode int
}

// New 创建控制器
func New(gateway Gateway, validator *service.ContactValidator) *Controller {
	if validator == nil {
		validator = service.NewContactValidator()
	}
	return &Controller{
		gateway:   gateway,
		validator: validator,
		state:     StateIdle,
	}
}

// Update 修改字段，视为一次修正
func (c *Controller) Update(fields Fields) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fields = fields
	c.resetLocked()
	return c.snapshotLocked()
}

// SetCaptchaToken 记录验证码 token，空字符串表示 token 过期
func (c *Controller) SetCaptchaToken(token string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	c.resetLocked()
	return c.snapshotLocked()
}

// Submit 校验并提交
// 校验失败不会发出网络请求；网关 2xx 视为成功并清空表单，其余状态或传输错误均视为失败
func (c *Controller) Submit(ctx context.Context, fields Fields, captchaToken string) Snapshot {
	c.mu.Lock()
	if c.state == StateSubmitting {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.fields = fields
	c.token = captchaToken
	c.state = StateValidating
	c.message = ""
	c.statusCode = 0

	submission := models.ContactSubmission{
		Name:         fields.Name,
		Email:        fields.Email,
		Comments:     fields.Comments,
		CaptchaToken: captchaToken,
	}
	if errs := c.validator.Validate(submission); !errs.Valid() {
		c.state = StateInvalid
		c.errors = errs
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap
	}
	c.errors = nil
	c.state = StateSubmitting
	gateway := c.gateway
	c.mu.Unlock()

	var (
		status int
		err    error
	)
	if gateway == nil {
		err = ErrGatewayUnavailable
	} else {
		status, err = gateway.Send(ctx, submission)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusCode = status
	if err == nil && status >= 200 && status < 300 {
		c.state = StateSuccess
		c.message = constants.MsgSendSuccess
		c.fields = Fields{}
		c.token = ""
		return c.snapshotLocked()
	}
	c.state = StateFailed
	c.message = constants.MsgSendFailed
	return c.snapshotLocked()
}

// Snapshot 返回当前状态副本
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// resetLocked Invalid/Success/Failed 在新的交互后回到 Idle
func (c *Controller) resetLocked() {
	switch c.state {
	case StateInvalid, StateSuccess, StateFailed:
		c.state = StateIdle
		c.errors = nil
		c.message = ""
		c.statusCode = 0
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	var errs models.ValidationResult
	if len(c.errors) > 0 {
		errs = make(models.ValidationResult, len(c.errors))
		for k, v := range c.errors {
			errs[k] = v
		}
	}
	return Snapshot{
		State:      c.state,
		Fields:     c.fields,
		Errors:     errs,
		Message:    c.message,
		StatusCode: c.statusCode,
		HasToken:   c.token != "",
	}
}
