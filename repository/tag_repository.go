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

// TagRepository handles database operations for Tag entities
type TagRepository struct {
	DB *gorm.DB
}

// NewTagRepository creates a new instance of TagRepository
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{DB: db}
}

func normalizeAndValidate(name string) (string, error) {
	normalized := utils.NormalizeTagName(name)
	if normalized == "" {
		return "", models.NewValidationError("name", "tag name cannot be empty")
	}
	if !utils.IsValidTagName(normalized) {
		return "", models.NewValidationError("name", "tag names cannot contain semicolons or newlines")
	}
	return normalized, nil
}

// Create inserts a tag with a normalized name. Creating a name that
// already exists returns the existing tag in place of an error, keeping
// tag identity unique by name.
func (r *TagRepository) Create(tag *models.Tag) error {
	normalized, err := normalizeAndValidate(tag.Name)
	if err != nil {
		return err
	}
	tag.Name = normalized

	var existing models.Tag
	err = r.DB.Where("name = ?", normalized).First(&existing).Error
	if err == nil {
		*tag = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up tag %s: %w", normalized, err)
	}

	now := time.Now().Unix()
	if tag.PublicID == "" {
		tag.PublicID = uuid.NewString()
	}
	tag.CreatedAt = now
	tag.UpdatedAt = now
	if err := r.DB.Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag %s: %w", normalized, err)
	}
	return nil
}

// GetByID retrieves a tag by its internal ID
func (r *TagRepository) GetByID(id uint) (*models.Tag, error) {
	var tag models.Tag
	err := r.DB.First(&tag, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tag by ID %d: %w", id, err)
	}
	return &tag, nil
}

// GetByPublicID retrieves a tag by its public identifier
func (r *TagRepository) GetByPublicID(publicID string) (*models.Tag, error) {
	var tag models.Tag
	err := r.DB.Where("public_id = ?", publicID).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tag by public ID %s: %w", publicID, err)
	}
	return &tag, nil
}

// GetByName retrieves a tag by its normalized name
func (r *TagRepository) GetByName(name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.DB.Where("name = ?", utils.NormalizeTagName(name)).First(&tag).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get tag by name %s: %w", name, err)
	}
	return &tag, nil
}

// ListAll retrieves all tags ordered by name
func (r *TagRepository) ListAll() ([]models.Tag, error) {
	var tags []models.Tag
	if err := r.DB.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Rename changes a tag's name, normalizing first. Renaming onto a name
// already carried by a different tag merges the two inside a single
// transaction: every photo link moves to the existing tag (stale links
// are dropped instead of duplicated) and the renamed tag is deleted.
//
// The returned tag is the one that survived. After a merge that is the
// pre-existing tag, and the tagID passed in no longer resolves; callers
// holding on to the old identity must re-resolve from the return value.
func (r *TagRepository) Rename(tagID uint, newName string) (*models.Tag, error) {
	normalized, err := normalizeAndValidate(newName)
	if err != nil {
		return nil, err
	}

	tag, err := r.GetByID(tagID)
	if err != nil {
		return nil, err
	}
	if tag.Name == normalized {
		return tag, nil
	}

	var existing models.Tag
	err = r.DB.Where("name = ? AND id <> ?", normalized, tagID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// free name, plain rename
		tag.Name = normalized
		tag.UpdatedAt = time.Now().Unix()
		if err := r.DB.Model(&models.Tag{}).Where("id = ?", tagID).Updates(map[string]interface{}{
			"name":       tag.Name,
			"updated_at": tag.UpdatedAt,
		}).Error; err != nil {
			return nil, fmt.Errorf("failed to rename tag %d: %w", tagID, err)
		}
		return tag, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up tag name %s: %w", normalized, err)
	}

	// collision: merge into the existing tag
	err = r.DB.Transaction(func(tx *gorm.DB) error {
		var links []models.PhotoTag
		if err := tx.Where("tag_id = ?", tagID).Find(&links).Error; err != nil {
			return fmt.Errorf("failed to list links for tag %d: %w", tagID, err)
		}

		for _, link := range links {
			var count int64
			if err := tx.Model(&models.PhotoTag{}).
				Where("photo_id = ? AND tag_id = ?", link.PhotoID, existing.ID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check link for photo %d: %w", link.PhotoID, err)
			}
			if count > 0 {
				// the photo already carries the target tag, drop the stale link
				if err := tx.Where("photo_id = ? AND tag_id = ?", link.PhotoID, tagID).
					Delete(&models.PhotoTag{}).Error; err != nil {
					return fmt.Errorf("failed to drop stale link for photo %d: %w", link.PhotoID, err)
				}
				continue
			}
			if err := tx.Model(&models.PhotoTag{}).
				Where("photo_id = ? AND tag_id = ?", link.PhotoID, tagID).
				Update("tag_id", existing.ID).Error; err != nil {
				return fmt.Errorf("failed to move link for photo %d: %w", link.PhotoID, err)
			}
		}

		if err := tx.Delete(&models.Tag{}, tagID).Error; err != nil {
			return fmt.Errorf("failed to delete merged tag %d: %w", tagID, err)
		}

		return tx.Model(&models.Tag{}).Where("id = ?", existing.ID).
			Update("updated_at", time.Now().Unix()).Error
	})
	if err != nil {
		return nil, err
	}

	return &existing, nil
}

// Delete removes a tag and its photo links
func (r *TagRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PhotoTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete links for tag %d: %w", id, err)
		}
		result := tx.Delete(&models.Tag{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete tag ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// DeleteOrphans garbage-collects tags with no linked photos. Runs after
// every photo save.
func (r *TagRepository) DeleteOrphans() (int64, error) {
	result := r.DB.Where("id NOT IN (?)",
		r.DB.Model(&models.PhotoTag{}).Select("tag_id")).
		Delete(&models.Tag{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete orphaned tags: %w", result.Error)
	}
	return result.RowsAffected, nil
}
