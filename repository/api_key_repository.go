package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
)

// APIKeyRepository handles database operations for API keys
type APIKeyRepository struct {
	DB *gorm.DB
}

// NewAPIKeyRepository creates a new instance of APIKeyRepository
func NewAPIKeyRepository(db *gorm.DB) *APIKeyRepository {
	return &APIKeyRepository{DB: db}
}

// ListAll retrieves all API keys
func (r *APIKeyRepository) ListAll() ([]models.APIKey, error) {
	var keys []models.APIKey
	if err := r.DB.Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	return keys, nil
}

// Create stores a new API key with the given label and plaintext secret
func (r *APIKeyRepository) Create(label, plaintext string) (*models.APIKey, error) {
	key := &models.APIKey{
		Label:     label,
		CreatedAt: time.Now().Unix(),
	}
	if err := key.SetKey(plaintext); err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}
	if err := r.DB.Create(key).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return nil, models.NewConflictError("label", "an API key with the label '%s' already exists", label)
		}
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}
	return key, nil
}
