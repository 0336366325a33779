package api

import (
	"net/http"
	"os"
	"path/filepath"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mudler/xlog"

	"github.com/agentrix/agentrix/db"
	models "github.com/agentrix/agentrix/dbmodels"
)

// UploadFile stores a document for the agent: the binary on disk under the
// uploads directory, the metadata in the database.
func (a *App) UploadFile() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		agent, ok := contextAgent(c)
		if !ok {
			return internalError(c, "Agent not found in context")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "file is required")
		}

		dir := filepath.Join(a.cfg.UploadsDir, agent.ID.String())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return internalError(c, "Failed to prepare upload directory")
		}

		// Never trust the uploaded name for the on-disk path; keep it only as
		// metadata for extension dispatch and display.
		filename := filepath.Base(fileHeader.Filename)
		path := filepath.Join(dir, uuid.NewString()+filepath.Ext(filename))
		if err := c.SaveFile(fileHeader, path); err != nil {
			return internalError(c, "Failed to store file")
		}

		uploaded := models.UploadedFile{
			AgentID:  agent.ID,
			Filename: filename,
			Path:     path,
		}
		if err := db.DB.Create(&uploaded).Error; err != nil {
			if rmErr := os.Remove(path); rmErr != nil {
				xlog.Warn("Failed to clean up stored file", "path", path, "error", rmErr)
			}
			return internalError(c, "Failed to store file metadata")
		}

		xlog.Info("File uploaded", "agent", agent.ID, "file", filename)
		return c.Status(fiber.StatusCreated).JSON(uploaded)
	}
}

func (a *App) ListFiles() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		agent, ok := contextAgent(c)
		if !ok {
			return internalError(c, "Agent not found in context")
		}

		var files []models.UploadedFile
		if err := db.DB.
			Where("agent_id = ?", agent.ID).
			Order("uploaded_at DESC").
			Find(&files).Error; err != nil {
			return internalError(c, "Failed to list files")
		}

		return c.JSON(files)
	}
}
