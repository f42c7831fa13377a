package models

import "time"

// Notification is an in-app message for a single recipient.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:idx_notification_user_read" json:"user_id"`
	ComplaintID *uint     `gorm:"index" json:"complaint_id,omitempty"`
	Description string    `gorm:"type:text;not null" json:"description"`
	IsRead      bool      `gorm:"not null;default:false;index:idx_notification_user_read" json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}
