// Package chat drives one conversation turn: persist the user message,
// assemble document context, call the completion provider, persist the reply.
package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"

	models "github.com/agentrix/agentrix/dbmodels"
	"github.com/agentrix/agentrix/llm"
)

type Orchestrator struct {
	agents    AgentStore
	messages  ConversationStore
	files     FileStore
	usage     UsageStore
	extractor DocumentExtractor
	completer Completer
}

func NewOrchestrator(
	agents AgentStore,
	messages ConversationStore,
	files FileStore,
	usage UsageStore,
	extractor DocumentExtractor,
	completer Completer,
) *Orchestrator {
	return &Orchestrator{
		agents:    agents,
		messages:  messages,
		files:     files,
		usage:     usage,
		extractor: extractor,
		completer: completer,
	}
}

// HandleTurn runs one chat turn for the given user and agent and returns the
// assistant's reply.
//
// The user message is persisted before the provider is called, so a failed
// completion leaves a one-sided turn in history. That is intentional: the
// caller re-fetching history after a failure must see their message. Turns are
// not deduplicated; two identical calls produce two independent turns.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, agentID uuid.UUID, message string) (string, error) {
	agent, err := o.agents.OwnedByUser(ctx, agentID, userID)
	if err != nil {
		return "", err
	}

	if _, err := o.messages.Append(ctx, agent.ID, models.RoleUser, message); err != nil {
		return "", fmt.Errorf("saving user message: %w", err)
	}

	files, err := o.files.ForAgent(ctx, agent.ID)
	if err != nil {
		return "", fmt.Errorf("loading agent files: %w", err)
	}
	systemPrompt := AssembleContext(agent.SystemPrompt, files, o.extractor)

	history, err := o.messages.History(ctx, agent.ID)
	if err != nil {
		return "", fmt.Errorf("loading chat history: %w", err)
	}

	result, err := o.completer.Complete(ctx, systemPrompt, toOpenAIMessages(history))
	if err != nil {
		return "", fmt.Errorf("getting AI response: %w", err)
	}

	if _, err := o.messages.Append(ctx, agent.ID, models.RoleAssistant, result.Content); err != nil {
		return "", fmt.Errorf("saving assistant message: %w", err)
	}

	o.recordUsage(ctx, userID, agent.ID, result)

	return result.Content, nil
}

// History returns the full ordered conversation of an agent owned by userID.
func (o *Orchestrator) History(ctx context.Context, userID, agentID uuid.UUID) ([]models.ChatMessage, error) {
	agent, err := o.agents.OwnedByUser(ctx, agentID, userID)
	if err != nil {
		return nil, err
	}
	return o.messages.History(ctx, agent.ID)
}

func (o *Orchestrator) recordUsage(ctx context.Context, userID, agentID uuid.UUID, result *llm.Result) {
	if o.usage == nil || result.Usage.TotalTokens == 0 {
		return
	}
	err := o.usage.Record(ctx, &models.LLMUsage{
		UserID:           userID,
		AgentID:          agentID,
		Model:            result.Model,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
	})
	if err != nil {
		// Accounting must never fail the turn.
		xlog.Warn("Failed to record LLM usage", "agent", agentID, "error", err)
	}
}

func toOpenAIMessages(history []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
