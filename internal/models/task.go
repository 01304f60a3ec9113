package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityHigh   Priority = "alta"
	PriorityMedium Priority = "media"
	PriorityLow    Priority = "baja"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a school assignment. Dates are calendar dates in YYYY-MM-DD form.
type Task struct {
	ID           string         `gorm:"type:varchar(36);primarykey" json:"id"`
	OwnerID      uint64         `gorm:"not null;index" json:"-"`
	Subject      string         `gorm:"type:varchar(255);not null" json:"subject"`
	Type         string         `gorm:"type:varchar(255);not null" json:"type"`
	Description  string         `gorm:"type:text" json:"description"`
	AssignedDate string         `gorm:"type:varchar(10);not null" json:"assigned_date"`
	DueDate      string         `gorm:"type:varchar(10);not null;index" json:"due_date"`
	Priority     Priority       `gorm:"type:varchar(10);not null" json:"priority"`
	Completed    bool           `gorm:"not null" json:"completed"`
	Attachment   *string        `gorm:"type:varchar(1024)" json:"attachment,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
