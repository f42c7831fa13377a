package models

import "time"

// Decision is an advisory message about a complaint, sent from one party to another.
// Rows are never updated after insert.
type Decision struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ComplaintID  uint           `gorm:"not null;index:idx_decision_triple" json:"complaint_id"`
	SenderID     uint           `gorm:"not null;index:idx_decision_triple" json:"sender_id"`
	ReceiverID   uint           `gorm:"not null;index:idx_decision_triple;index" json:"receiver_id"`
	DecisionText string         `gorm:"type:text;not null" json:"decision_text"`
	Status       DecisionStatus `gorm:"type:varchar(32);not null;default:'pending'" json:"status"`
	// FilePath is relative to the deployment's data directory.
	FilePath  *string   `gorm:"type:varchar(512)" json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StereotypedReport is the plain-text summary generated for the president
// when a complaint is handed to an authority.
type StereotypedReport struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"complaint_id"`
	HandlerID   uint      `gorm:"not null" json:"handler_id"`
	RecipientID uint      `gorm:"not null;index" json:"recipient_id"`
	ReportType  string    `gorm:"type:varchar(32);not null" json:"report_type"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
