package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Stereotype is a free-form classification tag such as "Harassment".
type Stereotype struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Label string `gorm:"type:varchar(100);not null" json:"label"`
	// LabelKey is the lower-cased label; the unique index on it makes labels case-insensitive.
	LabelKey    string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// NormalizeLabel produces the LabelKey for a label.
func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// BeforeSave keeps LabelKey in step with Label.
func (s *Stereotype) BeforeSave(tx *gorm.DB) (err error) {
	s.Label = strings.TrimSpace(s.Label)
	s.LabelKey = NormalizeLabel(s.Label)
	return
}

// ComplaintStereotype tags a complaint with a stereotype.
type ComplaintStereotype struct {
	ComplaintID  uint      `gorm:"primaryKey" json:"complaint_id"`
	StereotypeID uint      `gorm:"primaryKey" json:"stereotype_id"`
	TaggedBy     uint      `gorm:"not null" json:"tagged_by"`
	CreatedAt    time.Time `json:"created_at"`
}
