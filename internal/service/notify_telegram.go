package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/secureport/internal/config"
	"github.com/secureport/internal/constants"
	"github.com/secureport/internal/models"
)

// Telegram 单条消息上限 4096 字符，按转义后的文本计算
const telegramMessageMaxRunes = 4096

// TelegramNotificationSink 通过 Telegram Bot API 推送联系消息
type TelegramNotificationSink struct {
	botToken   string
	chatID     string
	apiBase    string
	httpClient *http.Client
}

type telegramSendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

type telegramAPIResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegramNotificationSink 创建 Telegram 投递通道
func NewTelegramNotificationSink(cfg config.TelegramConfig, httpClient *http.Client) (*TelegramNotificationSink, error) {
	botToken := strings.TrimSpace(cfg.BotToken)
	chatID := strings.TrimSpace(cfg.ChatID)
	if botToken == "" || chatID == "" {
		return nil, fmt.Errorf("%w: telegram bot token or chat id missing", ErrNotifySinkNotConfigured)
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	if httpClient == nil {
		timeout := cfg.TimeoutMS
		if timeout <= 0 {
			timeout = 5000
		}
		httpClient = &http.Client{Timeout: time.Duration(timeout) * time.Millisecond}
	}
	return &TelegramNotificationSink{
		botToken:   botToken,
		chatID:     chatID,
		apiBase:    apiBase,
		httpClient: httpClient,
	}, nil
}

func (s *TelegramNotificationSink) Name() string {
	return constants.NotifySinkTelegram
}

func (s *TelegramNotificationSink) Notify(ctx context.Context, msg models.ContactMessage) error {
	payload, err := json.Marshal(telegramSendMessageRequest{
		ChatID:                s.chatID,
		Text:                  buildTelegramContactText(msg),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("%w: marshal telegram message: %v", ErrNotifySendFailed, err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		// 不回传原始错误，URL 中包含 bot token
		return fmt.Errorf("%w: build telegram request", ErrNotifySendFailed)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: telegram request failed: %s", ErrNotifySendFailed, redactToken(err.Error(), s.botToken))
	}
	defer resp.Body.Close()

	var result telegramAPIResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&result)
	if resp.StatusCode != http.StatusOK || !result.OK {
		return fmt.Errorf("%w: telegram status %d: %s", ErrNotifySendFailed, resp.StatusCode, result.Description)
	}
	return nil
}

func buildTelegramContactText(msg models.ContactMessage) string {
	head := fmt.Sprintf(
		"<b>New Contact Form Submission</b>\n\n"+
			"<b>Name:</b> %s\n"+
			"<b>Email:</b> %s\n"+
			"<b>Message:</b>\n",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
	)
	tail := ""
	if msg.RequestID != "" {
		tail = fmt.Sprintf("\n\n<i>request %s</i>", html.EscapeString(msg.RequestID))
	}
	budget := telegramMessageMaxRunes - utf8.RuneCountInString(head) - utf8.RuneCountInString(tail)
	return head + escapeTelegramText(msg.Comments, budget) + tail
}

// escapeTelegramText 转义后超过 budget 时逐字符截断并追加省略号，不会切断实体
func escapeTelegramText(text string, budget int) string {
	escaped := html.EscapeString(text)
	if utf8.RuneCountInString(escaped) <= budget {
		return escaped
	}
	if budget <= 1 {
		return ""
	}
	var b strings.Builder
	used := 0
	for _, r := range text {
		piece := html.EscapeString(string(r))
		n := utf8.RuneCountInString(piece)
		if used+n > budget-1 {
			break
		}
		b.WriteString(piece)
		used += n
	}
	b.WriteString("…")
	return b.String()
}

func redactToken(text, token string) string {
	if token == "" {
		return text
	}
	return strings.ReplaceAll(text, token, "***")
}
