package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UploadedFile holds the metadata of a document attached to an agent. The
// binary itself lives on disk under the uploads directory; only the path is
// stored here. Filename is the name declared by the uploader and drives
// extension-based text extraction.
type UploadedFile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID    uuid.UUID `gorm:"type:uuid;index;not null" json:"agentId"`
	Filename   string    `gorm:"type:varchar(255);not null" json:"filename"`
	Path       string    `gorm:"type:varchar(512);not null" json:"-"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploadedAt"`

	Agent Agent `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (f *UploadedFile) BeforeCreate(tx *gorm.DB) (err error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return
}
