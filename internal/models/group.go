package models

import (
	"strings"
	"time"
)

// Group is a competitive study group joined through its invite code.
// Groups are never deleted.
type Group struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	NameKey    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	InviteCode string    `gorm:"type:varchar(6);uniqueIndex;not null" json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}

// GroupNameKey normalizes a group name for case-insensitive uniqueness.
func GroupNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// HasMember reports whether memberID is on the roster.
func (g Group) HasMember(memberID string) bool {
	for _, m := range g.Members {
		if m.UserID == memberID {
			return true
		}
	}
	return false
}
