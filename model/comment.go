package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThesisComment is a comment on a thesis, optionally threaded via ParentID.
// Comments are stored flat; reply trees are assembled at read time.
type ThesisComment struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsResolved bool      `gorm:"default:false" json:"is_resolved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	ThesisID string  `gorm:"not null;index" json:"thesis_id"`
	UserID   string  `gorm:"not null;index" json:"user_id"`
	ParentID *string `gorm:"index" json:"parent_id,omitempty"` // must reference a comment on the same thesis

	User    *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Replies []ThesisComment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (c *ThesisComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ThesisComment
func (ThesisComment) TableName() string {
	return "thesis_comments"
}
