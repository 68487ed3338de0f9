package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/secureport/internal/config"
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"
)

// EmailNotificationSink 通过 SMTP 将联系消息发送到站点收件箱
type EmailNotificationSink struct {
	cfg config.EmailConfig
}

// NewEmailNotificationSink 创建邮件投递通道
func NewEmailNotificationSink(cfg config.EmailConfig) (*EmailNotificationSink, error) {
	if strings.TrimSpace(cfg.Host) == "" || cfg.Port == 0 || strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("%w: email host/port/from required", ErrNotifySinkNotConfigured)
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("%w: email recipients required", ErrNotifySinkNotConfigured)
	}
	for _, to := range cfg.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return nil, fmt.Errorf("%w: invalid recipient %q", ErrNotifySinkNotConfigured, to)
		}
	}
	return &EmailNotificationSink{cfg: cfg}, nil
}

func (s *EmailNotificationSink) Name() string {
	return constants.NotifySinkEmail
}

func (s *EmailNotificationSink) Notify(ctx context.Context, msg models.ContactMessage) error {
	subject, body := buildContactEmailContent(s.cfg.SubjectPrefix, msg)
	from := buildFromAddress(s.cfg.From, s.cfg.FromName)
	raw := buildEmailMessage(from, strings.Join(s.cfg.To, ", "), msg.Email, subject, body)

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	var auth smtp.Auth
	if s.cfg.Username != "" || s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	switch {
	case s.cfg.UseSSL:
		err = sendMailWithSSL(ctx, addr, auth, s.cfg.Host, s.cfg.From, s.cfg.To, []byte(raw))
	case s.cfg.UseTLS:
		err = sendMailWithStartTLS(ctx, addr, auth, s.cfg.Host, s.cfg.From, s.cfg.To, []byte(raw))
	default:
		err = sendMailPlain(ctx, addr, auth, s.cfg.Host, s.cfg.From, s.cfg.To, []byte(raw))
	}
	return normalizeEmailSendError(err)
}

func buildContactEmailContent(prefix string, msg models.ContactMessage) (string, string) {
	subject := fmt.Sprintf("New contact message from %s", msg.Name)
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		subject = prefix + " " + subject
	}

	var body strings.Builder
	body.WriteString("A new message was submitted through the website contact form.\n\n")
	fmt.Fprintf(&body, "Name: %s\n", msg.Name)
	fmt.Fprintf(&body, "Email: %s\n", msg.Email)
	fmt.Fprintf(&body, "Received: %s\n", msg.ReceivedAt.UTC().Format(time.RFC1123))
	if msg.ClientIP != "" {
		fmt.Fprintf(&body, "Client IP: %s\n", msg.ClientIP)
	}
	if msg.RequestID != "" {
		fmt.Fprintf(&body, "Request ID: %s\n", msg.RequestID)
	}
	body.WriteString("\nComments:\n")
	body.WriteString(msg.Comments)
	body.WriteString("\n")
	return subject, body.String()
}

func buildFromAddress(from, name string) string {
	if strings.TrimSpace(name) == "" {
		return from
	}
	encoded := mime.QEncoding.Encode("UTF-8", name)
	return (&mail.Address{Name: encoded, Address: from}).String()
}

func buildEmailMessage(from, to, replyTo, subject, body string) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", to))
	if _, err := mail.ParseAddress(replyTo); err == nil {
		buf.WriteString(fmt.Sprintf("Reply-To: %s\r\n", replyTo))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.String()
}

func dialSMTP(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	var (
		conn net.Conn
		err  error
	)
	if tlsConfig != nil {
		dialer := &tls.Dialer{Config: tlsConfig}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	} else {
		dialer := &net.Dialer{}
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	return conn, nil
}

func sendMailWithSSL(ctx context.Context, addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(ctx, addr, &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if err := smtpAuth(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailWithStartTLS(ctx context.Context, addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(ctx, addr, nil)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}); err != nil {
		return err
	}
	if err := smtpAuth(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func sendMailPlain(ctx context.Context, addr string, auth smtp.Auth, host, from string, to []string, msg []byte) error {
	conn, err := dialSMTP(ctx, addr, nil)
	if err != nil {
		return err
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer client.Close()

	if err := smtpAuth(client, auth); err != nil {
		return err
	}
	return sendSMTPData(client, from, to, msg)
}

func smtpAuth(client *smtp.Client, auth smtp.Auth) error {
	if auth == nil {
		return nil
	}
	if ok, _ := client.Extension("AUTH"); !ok {
		return nil
	}
	return client.Auth(auth)
}

func sendSMTPData(client *smtp.Client, from string, to []string, msg []byte) error {
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func normalizeEmailSendError(err error) error {
	if err == nil {
		return nil
	}
	if isEmailRecipientRejected(err) {
		return fmt.Errorf("%w: %v", ErrEmailRecipientRejected, err)
	}
	return fmt.Errorf("%w: %v", ErrNotifySendFailed, err)
}

func isEmailRecipientRejected(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	if message == "" {
		return false
	}
	keywords := []string{
		"no such recipient",
		"no such user",
		"recipient address rejected",
		"user unknown",
		"unknown mailbox",
		"mailbox unavailable",
	}
	for _, keyword := range keywords {
		if strings.Contains(message, keyword) {
			return true
		}
	}
	return strings.Contains(message, "550") && strings.Contains(message, "recipient")
}
