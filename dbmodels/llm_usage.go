package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LLMUsage struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;index;not null" json:"userId"`
	AgentID          uuid.UUID `gorm:"type:uuid;index;not null" json:"agentId"`
	Model            string    `gorm:"type:varchar(100);not null" json:"model"`
	PromptTokens     int       `gorm:"not null" json:"promptTokens"`
	CompletionTokens int       `gorm:"not null" json:"completionTokens"`
	TotalTokens      int       `gorm:"not null" json:"totalTokens"`
	CreatedAt        time.Time `json:"createdAt"`

	User  User  `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Agent Agent `gorm:"foreignKey:AgentID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (u *LLMUsage) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}
