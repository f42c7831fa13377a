package models

import "time"

// Escalation is one hand-off in the append-only ledger. The row with the
// highest ID for a complaint is its current assignment state.
type Escalation struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	ComplaintID   uint             `gorm:"not null;index" json:"complaint_id"`
	EscalatedTo   Role             `gorm:"type:varchar(32);not null" json:"escalated_to"`
	EscalatedToID uint             `gorm:"not null;index" json:"escalated_to_id"`
	EscalatedByID uint             `gorm:"not null" json:"escalated_by_id"`
	ActionType    ActionType       `gorm:"type:varchar(16);not null" json:"action_type"`
	Status        EscalationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	// OriginalHandlerID routes replies back to the handler that started the chain.
	OriginalHandlerID *uint      `json:"original_handler_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	ResolvedAt        *time.Time `json:"resolved_at,omitempty"`
	ResolutionDetails *string    `gorm:"type:text" json:"resolution_details,omitempty"`
}

// IsPending reports whether the hand-off still awaits the target.
func (e *Escalation) IsPending() bool {
	return e != nil && e.Status == EscalationPending
}
