package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeadlineType enumerates the kinds of scheduled deadlines.
type DeadlineType string

const (
	DeadlineSubmission DeadlineType = "submission"
	DeadlineReview     DeadlineType = "review"
	DeadlineDefense    DeadlineType = "defense"
	DeadlineRevision   DeadlineType = "revision"
)

// IsValid reports whether the deadline type is one of the defined values.
func (t DeadlineType) IsValid() bool {
	switch t {
	case DeadlineSubmission, DeadlineReview, DeadlineDefense, DeadlineRevision:
		return true
	}
	return false
}

// Deadline is a scheduled date gating submission, review, defense or
// revision activity. Global deadlines apply to all students.
type Deadline struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
	Location     string       `json:"location,omitempty"` // used by defense deadlines
	DeadlineDate time.Time    `gorm:"not null;index" json:"deadline_date"`
	DeadlineType DeadlineType `gorm:"type:varchar(32);not null" json:"deadline_type"`
	IsActive     bool         `gorm:"default:true" json:"is_active"`
	IsGlobal     bool         `gorm:"default:true" json:"is_global"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	CreatedBy string `gorm:"not null;index" json:"created_by"`

	Creator *User `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (d *Deadline) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Deadline
func (Deadline) TableName() string {
	return "deadlines"
}
