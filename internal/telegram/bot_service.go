// Package telegram integrates the Telegram Bot API: it delivers notifications
// to linked chats and answers a few read-only commands.
package telegram

import (
	"context"
	"fmt"

	"complaintdesk/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// BotService receives Telegram updates and replies to commands.
type BotService struct {
	BotAPI *tgbotapi.BotAPI
	log    zerolog.Logger
}

// NewBotService authorizes the bot token against the Telegram API.
func NewBotService(token string, log zerolog.Logger) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	bot.Debug = false
	log = log.With().Str("component", "telegram").Logger()
	log.Info().Str("account", bot.Self.UserName).Msg("Telegram bot authorized")

	return &BotService{BotAPI: bot, log: log}, nil
}

// Sender returns the notification sink backed by this bot.
func (s *BotService) Sender() *Sender {
	return NewSender(s.BotAPI)
}

// Run is the main loop for receiving Telegram updates. Commands are answered
// by cmds. It returns when ctx is cancelled.
func (s *BotService) Run(ctx context.Context, cmds *Commands) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)
	defer s.BotAPI.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			s.handleCommand(ctx, cmds, update.Message)
		}
	}
}

func (s *BotService) handleCommand(ctx context.Context, cmds *Commands, msg *tgbotapi.Message) {
	lang := localization.DefaultLanguage
	if msg.From != nil && msg.From.LanguageCode != "" {
		lang = msg.From.LanguageCode
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, cmds.Reply(ctx, msg.Chat.ID, msg.Command(), lang))
	reply.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.BotAPI.Send(reply); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Str("command", msg.Command()).Msg("Failed to answer command")
	}
}
