package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agentrix/agentrix/core/chat"
	models "github.com/agentrix/agentrix/dbmodels"
)

// Stores is the gorm-backed implementation of the chat package's store
// interfaces.
type Stores struct {
	db *gorm.DB
}

func NewStores(gdb *gorm.DB) *Stores {
	return &Stores{db: gdb}
}

func (s *Stores) OwnedByUser(ctx context.Context, agentID, userID uuid.UUID) (*models.Agent, error) {
	var agent models.Agent
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", agentID, userID).
		First(&agent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, chat.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying agent: %w", err)
	}
	return &agent, nil
}

func (s *Stores) Append(ctx context.Context, agentID uuid.UUID, role, content string) (*models.ChatMessage, error) {
	msg := &models.ChatMessage{
		AgentID: agentID,
		Role:    role,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("creating chat message: %w", err)
	}
	return msg, nil
}

func (s *Stores) History(ctx context.Context, agentID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("querying chat history: %w", err)
	}
	return messages, nil
}

func (s *Stores) ForAgent(ctx context.Context, agentID uuid.UUID) ([]models.UploadedFile, error) {
	var files []models.UploadedFile
	err := s.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("uploaded_at DESC").
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("querying uploaded files: %w", err)
	}
	return files, nil
}

func (s *Stores) Record(ctx context.Context, usage *models.LLMUsage) error {
	if err := s.db.WithContext(ctx).Create(usage).Error; err != nil {
		return fmt.Errorf("creating usage record: %w", err)
	}
	return nil
}
