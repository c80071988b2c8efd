package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Grade bounds for a preliminary evaluation.
const (
	MinEvaluation = 2
	MaxEvaluation = 6
)

// Review is a graduation assistant's written evaluation of a thesis
type Review struct {
	ID                    string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title                 string     `gorm:"not null;index" json:"title"` // auto-generated from the reviewer name
	Text                  string     `gorm:"type:text;not null" json:"text"`
	PreliminaryEvaluation int        `gorm:"not null" json:"preliminary_evaluation"` // bounded [MinEvaluation, MaxEvaluation]
	AssignedAt            time.Time  `json:"assigned_at"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`

	ThesisID    string `gorm:"not null;index" json:"thesis_id"`
	AssistantID string `gorm:"not null;index" json:"assistant_id"`

	Assistant *User `gorm:"foreignKey:AssistantID" json:"assistant,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Review
func (Review) TableName() string {
	return "reviews"
}
