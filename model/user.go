package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRole enumerates the roles a user can hold.
type UserRole string

const (
	RoleStudent             UserRole = "student"
	RoleProfessor           UserRole = "professor"
	RoleGraduationAssistant UserRole = "graduation_assistant"
)

// IsValid reports whether the role is one of the defined roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleStudent, RoleProfessor, RoleGraduationAssistant:
		return true
	}
	return false
}

// IsReviewer reports whether the role may review theses.
func (r UserRole) IsReviewer() bool {
	return r == RoleProfessor || r == RoleGraduationAssistant
}

// User represents a registered user in the system
type User struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName       string         `gorm:"index" json:"full_name"`
	HashedPassword string         `json:"-"` // empty for OAuth-only accounts
	Role           UserRole       `gorm:"type:varchar(32);not null" json:"role"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	IsVerified     bool           `gorm:"default:false" json:"is_verified"`
	Bio            string         `gorm:"type:text" json:"bio,omitempty"`
	ProfilePicture string         `json:"profile_picture,omitempty"` // path relative to the uploads root
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// OAuth linkage
	OAuthProvider string         `gorm:"type:varchar(32)" json:"oauth_provider,omitempty"`
	OAuthID       string         `gorm:"index" json:"-"`
	OAuthClaims   datatypes.JSON `json:"-"` // raw ID token claims as received

	// Relationships
	Theses           []Thesis           `gorm:"foreignKey:StudentID" json:"-"`
	SupervisedTheses []Thesis           `gorm:"foreignKey:SupervisorID" json:"-"`
	Comments         []ThesisComment    `gorm:"foreignKey:UserID" json:"-"`
	Events           []Event            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	SentRequests     []AssistantRequest `gorm:"foreignKey:StudentID" json:"-"`
	ReceivedRequests []AssistantRequest `gorm:"foreignKey:AssistantID" json:"-"`
	Reviews          []Review           `gorm:"foreignKey:AssistantID" json:"-"`
}

// BeforeCreate assigns a random ID when none is set
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
