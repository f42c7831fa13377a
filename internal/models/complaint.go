package models

import "time"

// Complaint is the record a complainant submits and handlers move through the lifecycle.
type Complaint struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    Category   `gorm:"type:varchar(32);not null;default:''" json:"category"`
	Directorate *string    `gorm:"type:varchar(255)" json:"directorate,omitempty"`
	Visibility  Visibility `gorm:"type:varchar(16);not null;default:'standard'" json:"visibility"`
	Status      Status     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	// EvidenceFile is a reference to an uploaded file; storage of the file itself is external.
	EvidenceFile      *string    `gorm:"type:varchar(512)" json:"evidence_file,omitempty"`
	ResolutionDetails *string    `gorm:"type:text" json:"resolution_details,omitempty"`
	ResolutionDate    *time.Time `json:"resolution_date,omitempty"`

	NeedsCommittee     bool  `gorm:"not null;default:false" json:"needs_committee"`
	CommitteeID        *uint `gorm:"index" json:"committee_id,omitempty"`
	NeedsVideoChat     bool  `gorm:"not null;default:false" json:"needs_video_chat"`
	VideoChatCompleted bool  `gorm:"not null;default:false" json:"video_chat_completed"`

	SubmittedBy uint  `gorm:"not null;index" json:"submitted_by"`
	HandlerID   *uint `gorm:"index" json:"handler_id,omitempty"`

	// Version is bumped by every update and checked in the WHERE clause.
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsClaimedBy reports whether userID is the owning handler.
func (c *Complaint) IsClaimedBy(userID uint) bool {
	return c.HandlerID != nil && *c.HandlerID == userID
}

// ComplaintExportRow is one line of the CSV export; it is a query projection, not a table.
type ComplaintExportRow struct {
	ID                uint
	Title             string
	Category          Category
	SubmittedBy       string
	HandledBy         string
	Visibility        Visibility
	Status            Status
	SubmittedOn       time.Time
	ResolvedOn        *time.Time
	ResolutionDetails *string
}
