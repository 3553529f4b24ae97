package db

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mimirprompt/gallery-crawler/db/models"
	"github.com/mimirprompt/gallery-crawler/logger"
)

// Database represents the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens (and migrates) the target store at dsn.
func NewDatabase(dsn string) (*Database, error) {
	writer := logger.Logger
	if writer == nil {
		writer = log.Default()
	}

	logConfig := gormlogger.Config{
		LogLevel: gormlogger.Warn,
		Colorful: true,
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(writer, logConfig),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Author{},
		&models.Category{},
		&models.Tag{},
		&models.Prompt{},
		&models.PromptImage{},
		&models.PromptTagRelation{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
