package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	models "github.com/agentrix/agentrix/dbmodels"
	"github.com/agentrix/agentrix/llm"
)

// ErrNotFound is returned when an agent does not exist or belongs to another
// user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("agent not found")

// AgentStore resolves agents scoped to their owning user.
type AgentStore interface {
	OwnedByUser(ctx context.Context, agentID, userID uuid.UUID) (*models.Agent, error)
}

// ConversationStore is the append-only message log of an agent. History
// returns all turns ordered by creation time, oldest first.
type ConversationStore interface {
	Append(ctx context.Context, agentID uuid.UUID, role, content string) (*models.ChatMessage, error)
	History(ctx context.Context, agentID uuid.UUID) ([]models.ChatMessage, error)
}

// FileStore lists the documents attached to an agent, newest first.
type FileStore interface {
	ForAgent(ctx context.Context, agentID uuid.UUID) ([]models.UploadedFile, error)
}

// UsageStore records per-completion token accounting.
type UsageStore interface {
	Record(ctx context.Context, usage *models.LLMUsage) error
}

// Completer produces an assistant reply for the given effective system prompt
// and conversation history.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []openai.ChatCompletionMessage) (*llm.Result, error)
}

// DocumentExtractor turns a stored file into plain text.
type DocumentExtractor interface {
	Extract(path, filename string) (string, error)
}
