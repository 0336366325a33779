// Package api exposes the platform over HTTP: auth, agent CRUD, document
// upload, and the chat endpoints backed by the turn orchestrator.
package api

import (
	"net/http"

	fiber "github.com/gofiber/fiber/v2"

	"github.com/agentrix/agentrix/core/chat"
	"github.com/agentrix/agentrix/pkg/config"
)

type App struct {
	*fiber.App
	cfg          *config.Config
	orchestrator *chat.Orchestrator
}

func NewApp(cfg *config.Config, orchestrator *chat.Orchestrator) *App {
	webapp := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // uploads
	})

	a := &App{
		App:          webapp,
		cfg:          cfg,
		orchestrator: orchestrator,
	}

	a.registerRoutes(webapp)

	return a
}

func errorJSONMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(struct {
		Error string `json:"error"`
	}{Error: message})
}

func statusJSONMessage(c *fiber.Ctx, message string) error {
	return c.JSON(struct {
		Status string `json:"status"`
	}{Status: message})
}

func internalError(c *fiber.Ctx, message string) error {
	return errorJSONMessage(c, http.StatusInternalServerError, message)
}
