package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/utils"
)

// SizeRepository handles database operations for the size registry
type SizeRepository struct {
	DB *gorm.DB
}

// NewSizeRepository creates a new instance of SizeRepository
func NewSizeRepository(db *gorm.DB) *SizeRepository {
	return &SizeRepository{DB: db}
}

// Create inserts a new size specification
func (r *SizeRepository) Create(size *models.Size) error {
	size.Slug = utils.Slugify(size.Slug)
	if size.Slug == "" {
		return models.NewValidationError("slug", "size slug cannot be empty")
	}
	if size.MaxDimension <= 0 {
		return models.NewValidationError("max_dimension", "max dimension must be positive")
	}

	now := time.Now().Unix()
	if size.PublicID == "" {
		size.PublicID = uuid.NewString()
	}
	size.CreatedAt = now
	size.UpdatedAt = now

	err := r.DB.Create(size).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "a size with the slug '%s' already exists", size.Slug)
		}
		return fmt.Errorf("failed to create size %s: %w", size.Slug, err)
	}
	return nil
}

// GetByID retrieves a size by its internal ID
func (r *SizeRepository) GetByID(id uint) (*models.Size, error) {
	var size models.Size
	err := r.DB.First(&size, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get size by ID %d: %w", id, err)
	}
	return &size, nil
}

// GetBySlug retrieves a size by its slug
func (r *SizeRepository) GetBySlug(slug string) (*models.Size, error) {
	var size models.Size
	err := r.DB.Where("slug = ?", slug).First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get size by slug %s: %w", slug, err)
	}
	return &size, nil
}

// GetByPublicID retrieves a size by its public identifier
func (r *SizeRepository) GetByPublicID(publicID string) (*models.Size, error) {
	var size models.Size
	err := r.DB.Where("public_id = ?", publicID).First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get size by public ID %s: %w", publicID, err)
	}
	return &size, nil
}

// ListAll retrieves all sizes ordered by max dimension
func (r *SizeRepository) ListAll() ([]models.Size, error) {
	var sizes []models.Size
	if err := r.DB.Order("max_dimension ASC").Find(&sizes).Error; err != nil {
		return nil, fmt.Errorf("failed to list sizes: %w", err)
	}
	return sizes, nil
}

// ListPublic retrieves the sizes exposed through the public API
func (r *SizeRepository) ListPublic() ([]models.Size, error) {
	var sizes []models.Size
	err := r.DB.Where("public = ?", true).Order("max_dimension ASC").Find(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list public sizes: %w", err)
	}
	return sizes, nil
}

// Count returns the number of registered sizes
func (r *SizeRepository) Count() (int64, error) {
	var count int64
	if err := r.DB.Model(&models.Size{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sizes: %w", err)
	}
	return count, nil
}

// Update persists a size after enforcing the registry locks: a size with
// CanEdit=false rejects any modification, and a builtin size's slug and
// comment are immutable.
func (r *SizeRepository) Update(size *models.Size) error {
	orig, err := r.GetByID(size.ID)
	if err != nil {
		return err
	}

	if !orig.CanEdit {
		return models.NewValidationError("", "cannot modify this size")
	}
	size.Slug = utils.Slugify(size.Slug)
	if orig.Builtin && (size.Slug != orig.Slug || size.Comment != orig.Comment) {
		return models.NewValidationError("slug", "cannot change the slug or comment of a builtin size")
	}
	if size.MaxDimension <= 0 {
		return models.NewValidationError("max_dimension", "max dimension must be positive")
	}

	size.UpdatedAt = time.Now().Unix()
	err = r.DB.Model(&models.Size{}).Where("id = ?", size.ID).Updates(map[string]interface{}{
		"slug":          size.Slug,
		"comment":       size.Comment,
		"max_dimension": size.MaxDimension,
		"square_crop":   size.SquareCrop,
		"public":        size.Public,
		"updated_at":    size.UpdatedAt,
	}).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "a size with the slug '%s' already exists", size.Slug)
		}
		return fmt.Errorf("failed to update size ID %d: %w", size.ID, err)
	}
	return nil
}

// Delete removes a size. Builtin or locked sizes cannot be deleted; the
// caller is responsible for removing the size's derived artifacts.
func (r *SizeRepository) Delete(id uint) error {
	size, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if size.Builtin || !size.CanEdit {
		return models.NewValidationError("", "cannot delete a builtin size")
	}

	result := r.DB.Delete(&models.Size{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete size ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
