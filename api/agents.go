package api

import (
	"errors"
	"net/http"
	"os"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mudler/xlog"
	"gorm.io/gorm"

	"github.com/agentrix/agentrix/db"
	models "github.com/agentrix/agentrix/dbmodels"
)

// RequireAgent loads the agent named by the :id route parameter, scoped to
// the authenticated user, and stores it in the request context. Agents owned
// by other users are reported as not found, never as forbidden.
func (a *App) RequireAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		// 1. Get user ID from context (must be called after RequireUser)
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing from context")
		}

		// 2. Get agent ID from route parameter
		agentID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid agent ID")
		}

		// 3. Check the agent exists and belongs to the caller
		var agent models.Agent
		if err := db.DB.
			Where("id = ? AND user_id = ?", agentID, uid).
			First(&agent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorJSONMessage(c, http.StatusNotFound, "Agent not found")
			}
			return internalError(c, "Failed to query agent")
		}

		c.Locals("agent", &agent)
		return c.Next()
	}
}

func contextAgent(c *fiber.Ctx) (*models.Agent, bool) {
	agent, ok := c.Locals("agent").(*models.Agent)
	return agent, ok && agent != nil
}

type agentRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"system_prompt"`
}

func (a *App) ListAgents() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing")
		}

		var agents []models.Agent
		if err := db.DB.
			Where("user_id = ?", uid).
			Order("created_at DESC").
			Find(&agents).Error; err != nil {
			return internalError(c, "Failed to list agents")
		}

		return c.JSON(agents)
	}
}

func (a *App) CreateAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		// 1. Get user ID
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing")
		}

		// 2. Parse request body
		var req agentRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid request")
		}
		if req.Name == "" {
			return errorJSONMessage(c, http.StatusBadRequest, "Name is required")
		}

		// 3. Store in DB; the default system prompt is applied on create
		agent := models.Agent{
			UserID:       uid,
			Name:         req.Name,
			Description:  req.Description,
			SystemPrompt: req.SystemPrompt,
		}
		if err := db.DB.Create(&agent).Error; err != nil {
			return internalError(c, "Failed to store agent: "+err.Error())
		}

		xlog.Info("Agent created", "user", uid, "agent", agent.ID)
		return c.Status(fiber.StatusCreated).JSON(agent)
	}
}

func (a *App) GetAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		agent, ok := contextAgent(c)
		if !ok {
			return internalError(c, "Agent not found in context")
		}
		return c.JSON(agent)
	}
}

func (a *App) UpdateAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		agent, ok := contextAgent(c)
		if !ok {
			return internalError(c, "Agent not found in context")
		}

		var req agentRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "Invalid request")
		}

		if req.Name != "" {
			agent.Name = req.Name
		}
		if req.Description != "" {
			agent.Description = req.Description
		}
		if req.SystemPrompt != "" {
			agent.SystemPrompt = req.SystemPrompt
		}

		if err := db.DB.Save(agent).Error; err != nil {
			return internalError(c, "Failed to update agent")
		}

		xlog.Info("Agent updated", "agent", agent.ID)
		return c.JSON(agent)
	}
}

// DeleteAgent removes the agent together with its messages, usage records and
// uploaded files (rows cascade; stored binaries are removed best-effort).
func (a *App) DeleteAgent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		agent, ok := contextAgent(c)
		if !ok {
			return internalError(c, "Agent not found in context")
		}

		var files []models.UploadedFile
		if err := db.DB.Where("agent_id = ?", agent.ID).Find(&files).Error; err == nil {
			for _, f := range files {
				if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
					xlog.Warn("Failed to remove stored file", "path", f.Path, "error", err)
				}
			}
		}

		// Messages, files and usage rows go with the agent via FK cascade.
		if err := db.DB.Delete(agent).Error; err != nil {
			return internalError(c, "Failed to delete agent: "+err.Error())
		}

		xlog.Info("Agent deleted", "agent", agent.ID)
		return statusJSONMessage(c, "ok")
	}
}
