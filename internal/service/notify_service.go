package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/secureport/internal/config"
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"

	"go.uber.org/zap"
)

// NotificationSink 联系表单校验通过后的投递通道
type NotificationSink interface {
	Name() string
	Notify(ctx context.Context, msg models.ContactMessage) error
}

// NewNotificationSink 按配置构造投递通道，多个通道时按顺序逐一投递
func NewNotificationSink(cfg config.NotifyConfig, log *zap.SugaredLogger, httpClient *http.Client) (NotificationSink, error) {
	names := cfg.Sinks
	if len(names) == 0 {
		names = []string{constants.NotifySinkLog}
	}

	sinks := make([]NotificationSink, 0, len(names))
	for _, name := range names {
		switch name {
		case constants.NotifySinkLog:
			sinks = append(sinks, NewLogNotificationSink(log))
		case constants.NotifySinkEmail:
			sink, err := NewEmailNotificationSink(cfg.Email)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		case constants.NotifySinkTelegram:
			sink, err := NewTelegramNotificationSink(cfg.Telegram, httpClient)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, sink)
		default:
			return nil, fmt.Errorf("%w: %q", ErrNotifySinkUnknown, name)
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewMultiNotificationSink(sinks...), nil
}

// LogNotificationSink 将联系消息写入结构化日志
type LogNotificationSink struct {
	log *zap.SugaredLogger
}

// NewLogNotificationSink 创建日志投递通道
func NewLogNotificationSink(log *zap.SugaredLogger) *LogNotificationSink {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &LogNotificationSink{log: log}
}

func (s *LogNotificationSink) Name() string {
	return constants.NotifySinkLog
}

func (s *LogNotificationSink) Notify(_ context.Context, msg models.ContactMessage) error {
	s.log.Infow("contact_message_received",
		"message_id", msg.ID,
		"request_id", msg.RequestID,
		"name", msg.Name,
		"email", msg.Email,
		"comments", msg.Comments,
		"client_ip", msg.ClientIP,
		"user_agent", msg.UserAgent,
		"received_at", msg.ReceivedAt,
	)
	return nil
}

// MultiNotificationSink 依次投递到多个通道，汇总全部失败
type MultiNotificationSink struct {
	sinks []NotificationSink
}

// NewMultiNotificationSink 创建组合投递通道
func NewMultiNotificationSink(sinks ...NotificationSink) *MultiNotificationSink {
	return &MultiNotificationSink{sinks: sinks}
}

func (s *MultiNotificationSink) Name() string {
	return "multi"
}

func (s *MultiNotificationSink) Notify(ctx context.Context, msg models.ContactMessage) error {
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNotifySendFailed, errors.Join(errs...))
}
