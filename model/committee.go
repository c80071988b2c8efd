package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommitteeMemberRole enumerates the roles on a defense panel.
type CommitteeMemberRole string

const (
	CommitteeChair    CommitteeMemberRole = "chair"
	CommitteeReviewer CommitteeMemberRole = "reviewer"
	CommitteeAdvisor  CommitteeMemberRole = "advisor"
	CommitteeExternal CommitteeMemberRole = "external"
)

// IsValid reports whether the committee role is one of the defined values.
func (r CommitteeMemberRole) IsValid() bool {
	switch r {
	case CommitteeChair, CommitteeReviewer, CommitteeAdvisor, CommitteeExternal:
		return true
	}
	return false
}

// ThesisCommitteeMember links a professor or graduation assistant to a
// thesis defense panel. A user may appear at most once per thesis.
type ThesisCommitteeMember struct {
	ID           string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Role         CommitteeMemberRole `gorm:"type:varchar(32);not null" json:"role"`
	HasApproved  bool                `gorm:"default:false" json:"has_approved"`
	ApprovalDate *time.Time          `json:"approval_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`

	ThesisID string `gorm:"not null;uniqueIndex:idx_committee_thesis_user" json:"thesis_id"`
	UserID   string `gorm:"not null;uniqueIndex:idx_committee_thesis_user" json:"user_id"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (m *ThesisCommitteeMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ThesisCommitteeMember
func (ThesisCommitteeMember) TableName() string {
	return "thesis_committee_members"
}
