package api

import (
	fiber "github.com/gofiber/fiber/v2"
)

func (a *App) registerRoutes(webapp *fiber.App) {
	webapp.Post("/api/auth/register", a.Register())
	webapp.Post("/api/auth/login", a.Login())

	authed := webapp.Group("/api", a.RequireUser())

	authed.Get("/agents", a.ListAgents())
	authed.Post("/agents", a.CreateAgent())
	authed.Get("/agents/:id", a.RequireAgent(), a.GetAgent())
	authed.Put("/agents/:id", a.RequireAgent(), a.UpdateAgent())
	authed.Delete("/agents/:id", a.RequireAgent(), a.DeleteAgent())

	authed.Post("/chat", a.Chat())
	authed.Get("/chat/:id/history", a.GetChatHistory())

	authed.Post("/agents/:id/files", a.RequireAgent(), a.UploadFile())
	authed.Get("/agents/:id/files", a.RequireAgent(), a.ListFiles())

	authed.Get("/usage", a.GetUsage())
}
