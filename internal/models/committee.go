package models

import (
	"time"

	"github.com/lib/pq"
)

// Committee is a panel a handler can route a validated complaint to.
type Committee struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	Name      string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	MemberIDs pq.Int64Array `gorm:"type:bigint[]" json:"member_ids"`
	CreatedAt time.Time     `json:"created_at"`
}

// HasMember reports whether userID sits on the committee.
func (c *Committee) HasMember(userID uint) bool {
	for _, id := range c.MemberIDs {
		if id == int64(userID) {
			return true
		}
	}
	return false
}
