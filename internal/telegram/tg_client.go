package telegram

import (
	"context"
	"fmt"
	"strings"

	"complaintdesk/backend/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger is the part of *tgbotapi.BotAPI used for sending.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender delivers notifications to users who linked a Telegram chat.
type Sender struct {
	bot Messenger
}

func NewSender(bot Messenger) *Sender {
	return &Sender{bot: bot}
}

func (s *Sender) Name() string { return "telegram" }

// Send skips users without a linked chat.
func (s *Sender) Send(_ context.Context, u *models.User, n models.Notification) error {
	if u.TelegramChatID == nil || *u.TelegramChatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(*u.TelegramChatID, FormatNotification(n))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send to chat %d: %w", *u.TelegramChatID, err)
	}
	return nil
}

// FormatNotification renders n as legacy Telegram Markdown.
func FormatNotification(n models.Notification) string {
	text := escapeMarkdown(n.Description)
	if n.ComplaintID == nil {
		return text
	}
	return fmt.Sprintf("*Complaint #%d*\n%s", *n.ComplaintID, text)
}

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// escapeMarkdown escapes the characters legacy Markdown treats as formatting.
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
