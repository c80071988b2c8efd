package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThesisStatus enumerates the lifecycle states of a thesis.
type ThesisStatus string

const (
	StatusDraft         ThesisStatus = "draft"
	StatusSubmitted     ThesisStatus = "submitted"
	StatusUnderReview   ThesisStatus = "under_review"
	StatusNeedsRevision ThesisStatus = "needs_revision"
	StatusApproved      ThesisStatus = "approved"
	StatusDeclined      ThesisStatus = "declined"
)

// IsValid reports whether the status is one of the six defined states.
func (s ThesisStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview,
		StatusNeedsRevision, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// Thesis is the central document-submission entity tracked through review
type Thesis struct {
	ID       string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Title    string       `gorm:"not null;index" json:"title"`
	Abstract string       `gorm:"type:text" json:"abstract,omitempty"`
	Status   ThesisStatus `gorm:"type:varchar(32);not null;default:'draft'" json:"status"`

	// Main document metadata
	DocumentPath string `json:"document_path,omitempty"`
	DocumentType string `json:"document_type,omitempty"` // MIME type
	DocumentSize int64  `json:"document_size,omitempty"` // bytes

	SubmissionDate *time.Time `json:"submission_date,omitempty"`
	ApprovalDate   *time.Time `json:"approval_date,omitempty"`
	DefenseDate    *time.Time `json:"defense_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentID    string  `gorm:"not null;index" json:"student_id"`
	SupervisorID *string `gorm:"index" json:"supervisor_id,omitempty"`

	// Relationships (children are removed with the thesis)
	Student          *User                   `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Supervisor       *User                   `gorm:"foreignKey:SupervisorID" json:"supervisor,omitempty"`
	Comments         []ThesisComment         `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments      []ThesisAttachment      `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	CommitteeMembers []ThesisCommitteeMember `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	Requests         []AssistantRequest      `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
	Reviews          []Review                `gorm:"foreignKey:ThesisID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate assigns a random ID when none is set
func (t *Thesis) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Thesis
func (Thesis) TableName() string {
	return "theses"
}
