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

// AlbumRepository handles database operations for Album entities
type AlbumRepository struct {
	DB *gorm.DB
}

// NewAlbumRepository creates a new instance of AlbumRepository
func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{DB: db}
}

// applyDerivedFields fills a blank slug from the title and a blank short
// description from the long one (truncated at 100 characters).
func applyDerivedFields(album *models.Album) {
	if album.Slug == "" {
		album.Slug = utils.Slugify(album.Title)
		if len(album.Slug) > 255 {
			album.Slug = album.Slug[:255]
		}
	}
	if album.ShortDescription == "" && album.Description != "" {
		if len(album.Description) > 100 {
			album.ShortDescription = album.Description[:97] + "..."
		} else {
			album.ShortDescription = album.Description
		}
	}
	if album.SortMethod == "" {
		album.SortMethod = models.DefaultSortMethod
	}
}

// validateParent walks the ancestor chain from the proposed parent and
// rejects the assignment if the album shows up: an album may never be
// its own ancestor.
func (r *AlbumRepository) validateParent(albumID uint, parentID *uint) error {
	if parentID == nil {
		return nil
	}
	if albumID != 0 && *parentID == albumID {
		return models.NewValidationError("parent", "an album cannot be its own ancestor")
	}

	ancestorID := parentID
	for ancestorID != nil {
		var ancestor models.Album
		err := r.DB.Select("id", "parent_id").First(&ancestor, *ancestorID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewValidationError("parent", "parent album %d does not exist", *ancestorID)
			}
			return fmt.Errorf("failed to walk album ancestors: %w", err)
		}
		if albumID != 0 && ancestor.ID == albumID {
			return models.NewValidationError("parent", "an album cannot be its own ancestor")
		}
		ancestorID = ancestor.ParentID
	}
	return nil
}

// Create inserts a new album with derived slug/short description and a
// validated parent.
func (r *AlbumRepository) Create(album *models.Album) error {
	applyDerivedFields(album)
	if !models.IsValidSortMethod(album.SortMethod) {
		return models.NewValidationError("sort_method", "invalid sort method '%s'", album.SortMethod)
	}
	if err := r.validateParent(0, album.ParentID); err != nil {
		return err
	}

	now := time.Now().Unix()
	if album.PublicID == "" {
		album.PublicID = uuid.NewString()
	}
	album.CreatedAt = now
	album.UpdatedAt = now

	err := r.DB.Create(album).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "an album with this title or slug already exists")
		}
		return fmt.Errorf("failed to create album %s: %w", album.Title, err)
	}
	return nil
}

// GetByID retrieves an album by its internal ID
func (r *AlbumRepository) GetByID(id uint) (*models.Album, error) {
	var album models.Album
	err := r.DB.First(&album, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by ID %d: %w", id, err)
	}
	return &album, nil
}

// GetByPublicID retrieves an album by its public identifier
func (r *AlbumRepository) GetByPublicID(publicID string) (*models.Album, error) {
	var album models.Album
	err := r.DB.Where("public_id = ?", publicID).First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by public ID %s: %w", publicID, err)
	}
	return &album, nil
}

// GetBySlug retrieves an album by its slug
func (r *AlbumRepository) GetBySlug(slug string) (*models.Album, error) {
	var album models.Album
	err := r.DB.Where("slug = ?", slug).First(&album).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get album by slug %s: %w", slug, err)
	}
	return &album, nil
}

// ListAll retrieves all albums, ordered by title
func (r *AlbumRepository) ListAll() ([]models.Album, error) {
	var albums []models.Album
	if err := r.DB.Order("title ASC").Find(&albums).Error; err != nil {
		return nil, fmt.Errorf("failed to list albums: %w", err)
	}
	return albums, nil
}

// ListChildren retrieves the direct children of an album
func (r *AlbumRepository) ListChildren(albumID uint) ([]models.Album, error) {
	var albums []models.Album
	err := r.DB.Where("parent_id = ?", albumID).Order("title ASC").Find(&albums).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list children of album %d: %w", albumID, err)
	}
	return albums, nil
}

// Update persists the album's mutable fields after re-validating the
// parent chain and sort method.
func (r *AlbumRepository) Update(album *models.Album) error {
	applyDerivedFields(album)
	if !models.IsValidSortMethod(album.SortMethod) {
		return models.NewValidationError("sort_method", "invalid sort method '%s'", album.SortMethod)
	}
	if err := r.validateParent(album.ID, album.ParentID); err != nil {
		return err
	}

	album.UpdatedAt = time.Now().Unix()
	err := r.DB.Model(&models.Album{}).Where("id = ?", album.ID).Updates(map[string]interface{}{
		"title":             album.Title,
		"slug":              album.Slug,
		"short_description": album.ShortDescription,
		"description":       album.Description,
		"sort_method":       album.SortMethod,
		"sort_descending":   album.SortDescending,
		"parent_id":         album.ParentID,
		"updated_at":        album.UpdatedAt,
	}).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "an album with this title or slug already exists")
		}
		return fmt.Errorf("failed to update album ID %d: %w", album.ID, err)
	}
	return nil
}

// Delete removes an album. Children are detached (their parent becomes
// null) and memberships are removed; photos are untouched.
func (r *AlbumRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Album{}).Where("parent_id = ?", id).
			Update("parent_id", gorm.Expr("NULL")).Error; err != nil {
			return fmt.Errorf("failed to detach children of album %d: %w", id, err)
		}
		if err := tx.Where("album_id = ?", id).Delete(&models.PhotoInAlbum{}).Error; err != nil {
			return fmt.Errorf("failed to delete memberships of album %d: %w", id, err)
		}
		result := tx.Delete(&models.Album{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete album ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// GetOrderedPhotos computes the album's photo sequence for its sort
// method. MANUAL always uses ascending membership order (the descending
// flag is deliberately ignored there), RANDOM shuffles per call, and
// CREATED/PUBLISHED honor SortDescending. Tie order between equal sort
// keys is whatever the storage returns.
func (r *AlbumRepository) GetOrderedPhotos(album *models.Album, publicOnly bool) ([]models.Photo, error) {
	query := r.DB.Model(&models.Photo{}).
		Joins("JOIN photo_in_albums ON photo_in_albums.photo_id = photos.id").
		Where("photo_in_albums.album_id = ?", album.ID)

	if publicOnly {
		query = query.Where("photos.published = ?", true)
	}

	direction := "ASC"
	if album.SortDescending {
		direction = "DESC"
	}

	switch album.SortMethod {
	case models.SortMethodManual:
		query = query.Order("photo_in_albums.photo_order ASC")
	case models.SortMethodCreated:
		query = query.
			Joins("LEFT JOIN photo_metadata ON photo_metadata.photo_id = photos.id").
			Order("photo_metadata.capture_date " + direction)
	case models.SortMethodPublished:
		query = query.Order("photos.publish_date " + direction)
	case models.SortMethodRandom:
		query = query.Order("RANDOM()")
	default:
		query = query.Order("photo_in_albums.photo_order ASC")
	}

	var photos []models.Photo
	if err := query.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to order photos for album %d: %w", album.ID, err)
	}
	return photos, nil
}

// ListMemberships retrieves the album's join rows in membership order.
func (r *AlbumRepository) ListMemberships(albumID uint) ([]models.PhotoInAlbum, error) {
	var memberships []models.PhotoInAlbum
	err := r.DB.Where("album_id = ?", albumID).Order("photo_order ASC").Find(&memberships).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships for album %d: %w", albumID, err)
	}
	return memberships, nil
}
