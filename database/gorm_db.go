package database

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photocmsbackend/models"
)

// InitGormDB initializes and returns a GORM database instance
func InitGormDB(dataSourceName string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	// WAL for better concurrency between request handlers and workers
	if err := db.Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
		log.Printf("warning: failed to set WAL mode: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("GORM Database initialized successfully at", dataSourceName)
	return db, nil
}

// AutoMigrateModels can be called after InitGormDB to migrate schemas
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Photo{},
		&models.PhotoMetadata{},
		&models.Tag{},
		&models.PhotoTag{},
		&models.Album{},
		&models.PhotoInAlbum{},
		&models.Size{},
		&models.PhotoSize{},
		&models.APIKey{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	log.Println("GORM AutoMigrate completed successfully.")
	return nil
}

// builtinSizes are seeded on first start. Their slug and comment are
// locked afterwards; "thumb" is fully locked (CanEdit=false).
var builtinSizes = []models.Size{
	{Slug: "thumb", Comment: "Square thumbnail", MaxDimension: 256, SquareCrop: true, Builtin: true, CanEdit: false, Public: true},
	{Slug: "preview", Comment: "Inline preview", MaxDimension: 1024, SquareCrop: false, Builtin: true, CanEdit: true, Public: true},
}

// SeedBuiltinSizes inserts the builtin size registry entries if absent.
func SeedBuiltinSizes(db *gorm.DB) error {
	now := time.Now().Unix()
	for _, seed := range builtinSizes {
		var existing models.Size
		err := db.Where("slug = ?", seed.Slug).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up builtin size %s: %w", seed.Slug, err)
		}

		size := seed
		size.PublicID = uuid.NewString()
		size.CreatedAt = now
		size.UpdatedAt = now
		if err := db.Create(&size).Error; err != nil {
			return fmt.Errorf("failed to seed builtin size %s: %w", seed.Slug, err)
		}
		log.Printf("seeded builtin size %s (%dpx)", size.Slug, size.MaxDimension)
	}
	return nil
}

// SeedAPIKey stores a bcrypt hash of the bootstrap key under the
// "bootstrap" label, if no key with that label exists yet.
func SeedAPIKey(db *gorm.DB, plaintext string) error {
	if plaintext == "" {
		return nil
	}

	var existing models.APIKey
	err := db.Where("label = ?", "bootstrap").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up bootstrap API key: %w", err)
	}

	key := models.APIKey{Label: "bootstrap", CreatedAt: time.Now().Unix()}
	if err := key.SetKey(plaintext); err != nil {
		return fmt.Errorf("failed to hash bootstrap API key: %w", err)
	}
	if err := db.Create(&key).Error; err != nil {
		return fmt.Errorf("failed to store bootstrap API key: %w", err)
	}
	log.Println("seeded bootstrap API key")
	return nil
}
