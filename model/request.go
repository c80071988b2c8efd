package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus enumerates assistant request states. Accepted and declined
// are terminal.
type RequestStatus string

const (
	RequestRequested RequestStatus = "requested"
	RequestAccepted  RequestStatus = "accepted"
	RequestDeclined  RequestStatus = "declined"
)

// IsValid reports whether the status is one of the defined values.
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestRequested, RequestAccepted, RequestDeclined:
		return true
	}
	return false
}

// AssistantRequest pairs a student's thesis with a candidate graduation
// assistant. At most one request per thesis may be pending at a time.
type AssistantRequest struct {
	ID         string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Status     RequestStatus `gorm:"type:varchar(32);not null;default:'requested'" json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"` // set when accepted or declined

	StudentID   string `gorm:"not null;index" json:"student_id"`
	AssistantID string `gorm:"not null;index" json:"assistant_id"`
	ThesisID    string `gorm:"not null;index" json:"thesis_id"`

	Student   *User   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Assistant *User   `gorm:"foreignKey:AssistantID" json:"assistant,omitempty"`
	Thesis    *Thesis `gorm:"foreignKey:ThesisID" json:"thesis,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (r *AssistantRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for AssistantRequest
func (AssistantRequest) TableName() string {
	return "assistant_requests"
}
