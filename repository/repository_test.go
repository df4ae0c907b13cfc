package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/photocmsbackend/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
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
	require.NoError(t, err)

	return db
}

func createTestPhoto(t *testing.T, repo *PhotoRepository, title string) *models.Photo {
	t.Helper()
	photo := &models.Photo{Title: title, RawImagePath: "raw_photos/" + title + ".jpg"}
	require.NoError(t, repo.Create(photo))
	return photo
}
