package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User is anyone who can sign in: complainants, handlers, authorities and admins.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	FirstName    string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role   `gorm:"type:varchar(32);not null;index" json:"role"`
	// TelegramChatID links the account to a Telegram chat for notification delivery.
	TelegramChatID *int64    `gorm:"index" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// FullName joins first and last name the way reports print them.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// BeforeSave normalizes the e-mail so the unique index is case-insensitive.
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return
}
