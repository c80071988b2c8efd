package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a calendar entry owned by a user, optionally tied to a thesis
type Event struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"` // never before StartTime
	IsAllDay    bool      `gorm:"default:false" json:"is_all_day"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	ThesisID *string `gorm:"index" json:"thesis_id,omitempty"`
	UserID   string  `gorm:"not null;index" json:"user_id"`
}

// BeforeCreate assigns a random ID when none is set
func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Event
func (Event) TableName() string {
	return "events"
}
