package api

import (
	"errors"
	"net/http"
	"strings"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/agentrix/agentrix/core/chat"
	"github.com/agentrix/agentrix/llm"
)

func (a *App) Chat() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		// 1. Get user ID from context
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing")
		}

		// 2. Parse body
		var payload struct {
			AgentID string `json:"agent_id"`
			Message string `json:"message"`
		}
		if err := c.BodyParser(&payload); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid request")
		}

		message := strings.TrimSpace(payload.Message)
		if message == "" {
			return errorJSONMessage(c, http.StatusBadRequest, "Message cannot be empty")
		}
		agentID, err := uuid.Parse(payload.AgentID)
		if err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid agent ID")
		}

		// 3. Run the turn
		reply, err := a.orchestrator.HandleTurn(c.Context(), uid, agentID, message)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				return errorJSONMessage(c, http.StatusNotFound, "Agent not found")
			}
			// Completion failures are the provider's fault, not the caller's.
			// The user message is already persisted at this point.
			var completionErr *llm.CompletionError
			if errors.As(err, &completionErr) || errors.Is(err, llm.ErrNoAPIKey) {
				xlog.Error("Chat turn failed", "agent", agentID, "error", err)
				return errorJSONMessage(c, http.StatusBadGateway, "Failed to get AI response: "+err.Error())
			}
			xlog.Error("Chat turn failed", "agent", agentID, "error", err)
			return internalError(c, "Failed to process message")
		}

		return c.JSON(fiber.Map{
			"response": reply,
			"agent_id": agentID,
		})
	}
}

func (a *App) GetChatHistory() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing")
		}
		agentID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid agent ID")
		}

		messages, err := a.orchestrator.History(c.Context(), uid, agentID)
		if err != nil {
			if errors.Is(err, chat.ErrNotFound) {
				return errorJSONMessage(c, http.StatusNotFound, "Agent not found")
			}
			return internalError(c, "Failed to fetch messages: "+err.Error())
		}

		formatted := make([]fiber.Map, 0, len(messages))
		for _, msg := range messages {
			formatted = append(formatted, fiber.Map{
				"id":         msg.ID,
				"role":       msg.Role,
				"content":    msg.Content,
				"created_at": msg.CreatedAt,
			})
		}

		return c.JSON(formatted)
	}
}
