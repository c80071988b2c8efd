package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThesisAttachment is a supporting file attached to a thesis
type ThesisAttachment struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Filename    string    `gorm:"not null" json:"filename"`           // original filename as uploaded
	FilePath    string    `gorm:"not null" json:"file_path"`          // path relative to the uploads root
	FileType    string    `gorm:"not null" json:"file_type"`          // MIME type
	FileSize    int64     `gorm:"not null" json:"file_size"`          // bytes
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	ThesisID   string `gorm:"not null;index" json:"thesis_id"`
	UploadedBy string `gorm:"not null" json:"uploaded_by"`

	Uploader *User `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
}

// BeforeCreate assigns a random ID when none is set
func (a *ThesisAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for ThesisAttachment
func (ThesisAttachment) TableName() string {
	return "thesis_attachments"
}
