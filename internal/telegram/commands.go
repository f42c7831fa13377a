package telegram

import (
	"context"
	"strings"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/models"
)

// Accounts finds the user linked to a chat.
type Accounts interface {
	GetUserByTelegramChatID(ctx context.Context, chatID int64) (*models.User, error)
}

// Inbox reads a user's notifications.
type Inbox interface {
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
}

const unreadPreview = 5

// Commands answers the bot's slash commands.
type Commands struct {
	accounts  Accounts
	inbox     Inbox
	localizer *localization.Localizer
}

func NewCommands(accounts Accounts, inbox Inbox, localizer *localization.Localizer) *Commands {
	return &Commands{accounts: accounts, inbox: inbox, localizer: localizer}
}

// Reply returns the text answering command from chatID.
func (c *Commands) Reply(ctx context.Context, chatID int64, command string, lang string) string {
	switch command {
	case "start":
		return c.localizer.Format(lang, "telegram.start", chatID)
	case "unread":
		return c.unread(ctx, chatID, lang)
	default:
		return c.localizer.GetString(lang, "telegram.help")
	}
}

func (c *Commands) unread(ctx context.Context, chatID int64, lang string) string {
	u, err := c.accounts.GetUserByTelegramChatID(ctx, chatID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return c.localizer.Format(lang, "telegram.not_linked", chatID)
	}
	if err != nil {
		return c.localizer.GetString(lang, apperr.CodeInternal)
	}

	n, err := c.inbox.UnreadCount(ctx, u.ID)
	if err != nil {
		return c.localizer.GetString(lang, apperr.CodeInternal)
	}
	if n == 0 {
		return c.localizer.GetString(lang, "telegram.no_unread")
	}

	latest, err := c.inbox.List(ctx, u.ID, true, unreadPreview)
	if err != nil {
		return c.localizer.GetString(lang, apperr.CodeInternal)
	}
	var b strings.Builder
	b.WriteString(c.localizer.Format(lang, "telegram.unread", n))
	for _, note := range latest {
		b.WriteString("\n")
		b.WriteString(FormatNotification(note))
	}
	return b.String()
}
