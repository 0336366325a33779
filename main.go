package main

import (
	"os"

	"github.com/mudler/xlog"

	"github.com/agentrix/agentrix/api"
	"github.com/agentrix/agentrix/core/chat"
	"github.com/agentrix/agentrix/db"
	"github.com/agentrix/agentrix/llm"
	"github.com/agentrix/agentrix/pkg/config"
	"github.com/agentrix/agentrix/pkg/extract"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		xlog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	if err := db.Connect(cfg.DatabaseURL); err != nil {
		xlog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	stores := db.NewStores(db.DB)
	gateway := llm.NewGateway(llm.Config{
		APIKey:  cfg.OpenRouterAPIKey,
		APIURL:  cfg.OpenRouterAPIURL,
		Models:  cfg.OpenRouterModels,
		Referer: cfg.ProviderReferer,
		Title:   cfg.ProviderTitle,
		Timeout: cfg.ProviderTimeout,
	})
	orchestrator := chat.NewOrchestrator(stores, stores, stores, stores, extract.New(), gateway)

	app := api.NewApp(cfg, orchestrator)

	xlog.Info("Starting server", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		xlog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
