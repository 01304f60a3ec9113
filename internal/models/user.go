package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the profile of a student. Guest profiles share the shape but are
// never stored in SQL; they live in the guest key-value store.
type User struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	Email              string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name               string         `gorm:"type:varchar(255);not null" json:"name"`
	PasswordHash       string         `gorm:"type:varchar(255);not null" json:"-"`
	IsGuest            bool           `gorm:"not null;default:false" json:"is_guest"`
	Streak             int            `gorm:"not null;default:0" json:"streak"`
	LastCompletionDate *string        `gorm:"type:varchar(10)" json:"last_completion_date"`
	Badges             []string       `gorm:"type:text;serializer:json" json:"badges"`
	GroupIDs           []string       `gorm:"type:text;serializer:json" json:"group_ids"`
	Points             int            `gorm:"not null;default:0" json:"points"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Tasks []Task `gorm:"foreignKey:OwnerID" json:"-"`
}

// Clone returns a deep copy so callers can derive a new profile without
// aliasing the badge and group slices of u.
func (u User) Clone() User {
	c := u
	if u.LastCompletionDate != nil {
		d := *u.LastCompletionDate
		c.LastCompletionDate = &d
	}
	c.Badges = append([]string{}, u.Badges...)
	c.GroupIDs = append([]string{}, u.GroupIDs...)
	c.Tasks = nil
	return c
}

// HasBadge reports whether badge was already earned.
func (u User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// InGroup reports whether the profile references groupID.
func (u User) InGroup(groupID string) bool {
	for _, id := range u.GroupIDs {
		if id == groupID {
			return true
		}
	}
	return false
}
