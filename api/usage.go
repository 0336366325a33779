package api

import (
	"net/http"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/agentrix/agentrix/db"
	models "github.com/agentrix/agentrix/dbmodels"
)

// GetUsage returns the LLM usage records for the authenticated user.
func (a *App) GetUsage() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		uid, ok := userID(c)
		if !ok {
			return errorJSONMessage(c, http.StatusUnauthorized, "User ID missing")
		}

		var usages []models.LLMUsage
		if err := db.DB.
			Where("user_id = ?", uid).
			Order("created_at DESC").
			Find(&usages).Error; err != nil {
			return internalError(c, "Failed to fetch usage data: "+err.Error())
		}

		return c.JSON(usages)
	}
}
