package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
)

// PhotoSizeRepository handles database operations for derived image artifacts
type PhotoSizeRepository struct {
	DB *gorm.DB
}

// NewPhotoSizeRepository creates a new instance of PhotoSizeRepository
func NewPhotoSizeRepository(db *gorm.DB) *PhotoSizeRepository {
	return &PhotoSizeRepository{DB: db}
}

// Create inserts a new derived artifact record. Concurrent workers can
// race on the same (photo, size) pair; callers should treat a unique
// constraint failure as a benign duplicate via IsUniqueConstraintError.
func (r *PhotoSizeRepository) Create(ps *models.PhotoSize) error {
	ps.CreatedAt = time.Now().Unix()
	if err := r.DB.Create(ps).Error; err != nil {
		if IsUniqueConstraintError(err) {
			return err
		}
		return fmt.Errorf("failed to create photo size (photo %d, size %d): %w", ps.PhotoID, ps.SizeID, err)
	}
	return nil
}

// Exists reports whether an artifact record exists for the pair
func (r *PhotoSizeRepository) Exists(photoID, sizeID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&models.PhotoSize{}).
		Where("photo_id = ? AND size_id = ?", photoID, sizeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check photo size existence: %w", err)
	}
	return count > 0, nil
}

// GetPublicBySlug retrieves the artifact for a photo and a public size slug
func (r *PhotoSizeRepository) GetPublicBySlug(photoID uint, sizeSlug string) (*models.PhotoSize, error) {
	var ps models.PhotoSize
	err := r.DB.Joins("JOIN sizes ON sizes.id = photo_sizes.size_id").
		Where("photo_sizes.photo_id = ? AND sizes.slug = ? AND sizes.public = ?", photoID, sizeSlug, true).
		Preload("Size").
		First(&ps).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo size %d/%s: %w", photoID, sizeSlug, err)
	}
	return &ps, nil
}

// ListByPhoto retrieves all artifact records for a photo
func (r *PhotoSizeRepository) ListByPhoto(photoID uint) ([]models.PhotoSize, error) {
	var sizes []models.PhotoSize
	err := r.DB.Where("photo_id = ?", photoID).Preload("Size").Find(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photo sizes for photo %d: %w", photoID, err)
	}
	return sizes, nil
}

// ListPublicByPhoto retrieves the artifact records whose size is public
func (r *PhotoSizeRepository) ListPublicByPhoto(photoID uint) ([]models.PhotoSize, error) {
	var sizes []models.PhotoSize
	err := r.DB.Joins("JOIN sizes ON sizes.id = photo_sizes.size_id").
		Where("photo_sizes.photo_id = ? AND sizes.public = ?", photoID, true).
		Preload("Size").
		Find(&sizes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list public photo sizes for photo %d: %w", photoID, err)
	}
	return sizes, nil
}

// ListAll retrieves every artifact record, used by the consistency sweep
func (r *PhotoSizeRepository) ListAll() ([]models.PhotoSize, error) {
	var sizes []models.PhotoSize
	if err := r.DB.Find(&sizes).Error; err != nil {
		return nil, fmt.Errorf("failed to list photo sizes: %w", err)
	}
	return sizes, nil
}

// CountByPhoto returns the number of artifact records for a photo
func (r *PhotoSizeRepository) CountByPhoto(photoID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&models.PhotoSize{}).Where("photo_id = ?", photoID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count photo sizes for photo %d: %w", photoID, err)
	}
	return count, nil
}

// Delete removes a single artifact record by ID
func (r *PhotoSizeRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.PhotoSize{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete photo size ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteByPhoto removes all artifact records for a photo and returns the
// relative paths of the files that should be removed from storage
func (r *PhotoSizeRepository) DeleteByPhoto(photoID uint) ([]string, error) {
	return r.deleteWhere("photo_id = ?", photoID)
}

// DeleteBySize removes all artifact records for a size and returns the
// relative paths of the files that should be removed from storage
func (r *PhotoSizeRepository) DeleteBySize(sizeID uint) ([]string, error) {
	return r.deleteWhere("size_id = ?", sizeID)
}

func (r *PhotoSizeRepository) deleteWhere(query string, arg interface{}) ([]string, error) {
	var paths []string
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		var records []models.PhotoSize
		if err := tx.Where(query, arg).Find(&records).Error; err != nil {
			return err
		}
		for _, ps := range records {
			if ps.ImagePath != "" {
				paths = append(paths, ps.ImagePath)
			}
		}
		return tx.Where(query, arg).Delete(&models.PhotoSize{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete photo sizes: %w", err)
	}
	return paths, nil
}
