package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	models "github.com/agentrix/agentrix/dbmodels"
)

var DB *gorm.DB

func Connect(dsn string) error {
	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := DB.AutoMigrate(
		&models.User{},
		&models.Agent{},
		&models.ChatMessage{},
		&models.UploadedFile{},
		&models.LLMUsage{},
	); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
