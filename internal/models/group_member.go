package models

import "time"

// GroupMember is one roster entry. Points and Streak are a snapshot copied
// from the user's profile when it was last synced, not a live reference.
type GroupMember struct {
	GroupID  string    `gorm:"type:varchar(36);primarykey" json:"-"`
	UserID   string    `gorm:"type:varchar(255);primarykey;index" json:"user_id"`
	Position int       `gorm:"not null" json:"-"`
	Points   int       `gorm:"not null" json:"points"`
	Streak   int       `gorm:"not null" json:"streak"`
	JoinedAt time.Time `json:"joined_at"`
}
