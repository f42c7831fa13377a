package models

import (
	"time"

	"gorm.io/datatypes"
)

// StatusHistory is the append-only audit trail of workflow events on a complaint.
type StatusHistory struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ComplaintID uint              `gorm:"not null;index" json:"complaint_id"`
	ActorID     uint              `gorm:"not null" json:"actor_id"`
	Event       string            `gorm:"type:varchar(32);not null" json:"event"`
	FromStatus  Status            `gorm:"type:varchar(32)" json:"from_status"`
	ToStatus    Status            `gorm:"type:varchar(32);not null" json:"to_status"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TableName keeps the singular table name used by the reports.
func (StatusHistory) TableName() string {
	return "status_history"
}

// All lists every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Committee{},
		&Complaint{},
		&Escalation{},
		&Decision{},
		&Notification{},
		&Stereotype{},
		&ComplaintStereotype{},
		&StereotypedReport{},
		&StatusHistory{},
	}
}
