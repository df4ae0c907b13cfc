package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/utils"
)

// PhotoRepository handles database operations for Photo entities
type PhotoRepository struct {
	DB *gorm.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository
func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{DB: db}
}

// Create inserts a new photo. A blank slug is derived from the title and
// the current date; a duplicate slug is a conflict error.
func (r *PhotoRepository) Create(photo *models.Photo) error {
	now := time.Now()
	if photo.PublicID == "" {
		photo.PublicID = uuid.NewString()
	}
	if photo.Slug == "" {
		photo.Slug = utils.PhotoSlug(photo.Title, now)
	}
	if photo.PublishDate == 0 {
		photo.PublishDate = now.Unix()
	}
	if photo.CustomAttributes == nil {
		photo.CustomAttributes = models.JSONMap{}
	}
	photo.CreatedAt = now.Unix()
	photo.UpdatedAt = now.Unix()

	err := r.DB.Create(photo).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "a photo with the slug '%s' already exists", photo.Slug)
		}
		return fmt.Errorf("failed to create photo %s: %w", photo.Title, err)
	}
	return nil
}

// GetByID retrieves a photo by its internal ID
func (r *PhotoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Metadata").Preload("Sizes").Preload("Sizes.Size").
		Preload("Tags").Preload("Albums").First(&photo, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by ID %d: %w", id, err)
	}
	return &photo, nil
}

// GetByPublicID retrieves a photo by its opaque public identifier
func (r *PhotoRepository) GetByPublicID(publicID string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Metadata").Preload("Sizes").Preload("Sizes.Size").
		Preload("Tags").Preload("Albums").
		Where("public_id = ?", publicID).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo by public ID %s: %w", publicID, err)
	}
	return &photo, nil
}

// GetPublishedByPublicID retrieves a published photo by public ID.
// Unpublished photos are indistinguishable from missing ones.
func (r *PhotoRepository) GetPublishedByPublicID(publicID string) (*models.Photo, error) {
	var photo models.Photo
	err := r.DB.Preload("Metadata").Preload("Sizes").Preload("Sizes.Size").
		Preload("Tags").Preload("Albums").
		Where("public_id = ? AND published = ?", publicID, true).First(&photo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get published photo %s: %w", publicID, err)
	}
	return &photo, nil
}

// ListAll retrieves every photo for the admin surface, in natural title
// order so "Photo 2" sorts before "Photo 10".
func (r *PhotoRepository) ListAll() ([]models.Photo, error) {
	var photos []models.Photo
	if err := r.DB.Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return natsort.Compare(photos[i].Title, photos[j].Title)
	})
	return photos, nil
}

// ListPublished retrieves published photos, optionally narrowed by
// location bounds. Photos with a hidden location or missing coordinates
// never match a location filter; an inverted range yields no rows.
func (r *PhotoRepository) ListPublished(filter *PhotoListFilter) ([]models.Photo, error) {
	query := r.DB.Where("published = ?", true)

	if filter != nil && filter.Latitude != nil {
		query = query.Where("hide_location = ? AND latitude IS NOT NULL AND latitude >= ? AND latitude <= ?",
			false, filter.Latitude.Lower, filter.Latitude.Upper)
	}
	if filter != nil && filter.Longitude != nil {
		query = query.Where("hide_location = ? AND longitude IS NOT NULL AND longitude >= ? AND longitude <= ?",
			false, filter.Longitude.Lower, filter.Longitude.Upper)
	}

	var photos []models.Photo
	if err := query.Order("publish_date DESC").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list published photos: %w", err)
	}
	return photos, nil
}

// ListPublishedByTag retrieves the published photos carrying a tag.
func (r *PhotoRepository) ListPublishedByTag(tagID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.
		Joins("JOIN photo_tags ON photo_tags.photo_id = photos.id").
		Where("photo_tags.tag_id = ? AND photos.published = ?", tagID, true).
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos for tag %d: %w", tagID, err)
	}
	return photos, nil
}

// Update persists the photo's mutable fields (including the recomputed
// published flag, which callers refresh via the publish engine first).
func (r *PhotoRepository) Update(photo *models.Photo) error {
	photo.UpdatedAt = time.Now().Unix()
	err := r.DB.Model(&models.Photo{}).Where("id = ?", photo.ID).Updates(map[string]interface{}{
		"title":             photo.Title,
		"slug":              photo.Slug,
		"description":       photo.Description,
		"publish_date":      photo.PublishDate,
		"hidden":            photo.Hidden,
		"published":         photo.Published,
		"latitude":          photo.Latitude,
		"longitude":         photo.Longitude,
		"hide_location":     photo.HideLocation,
		"custom_attributes": photo.CustomAttributes,
		"updated_at":        photo.UpdatedAt,
	}).Error
	if err != nil {
		if IsUniqueConstraintError(err) {
			return models.NewConflictError("slug", "a photo with the slug '%s' already exists", photo.Slug)
		}
		return fmt.Errorf("failed to update photo ID %d: %w", photo.ID, err)
	}
	return nil
}

// SetPublished writes only the published flag. Used by the publish-state
// engine; deliberately does not touch updated_at or trigger anything.
func (r *PhotoRepository) SetPublished(photoID uint, published bool) error {
	err := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).
		Update("published", published).Error
	if err != nil {
		return fmt.Errorf("failed to set published flag for photo %d: %w", photoID, err)
	}
	return nil
}

// SetLocation backfills the photo's coordinates. Only called when both
// are currently unset (the extractor's one-time GPS backfill).
func (r *PhotoRepository) SetLocation(photoID uint, latitude, longitude float64) error {
	err := r.DB.Model(&models.Photo{}).Where("id = ?", photoID).Updates(map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to set location for photo %d: %w", photoID, err)
	}
	return nil
}

// Delete removes the photo together with its join rows, metadata and
// derived artifact records. File removal is the caller's concern.
func (r *PhotoRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoTag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tag links for photo %d: %w", id, err)
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoInAlbum{}).Error; err != nil {
			return fmt.Errorf("failed to delete album memberships for photo %d: %w", id, err)
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoMetadata{}).Error; err != nil {
			return fmt.Errorf("failed to delete metadata for photo %d: %w", id, err)
		}
		if err := tx.Where("photo_id = ?", id).Delete(&models.PhotoSize{}).Error; err != nil {
			return fmt.Errorf("failed to delete size records for photo %d: %w", id, err)
		}
		result := tx.Delete(&models.Photo{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete photo ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// AssignAlbums replaces the photo's album membership with exactly the
// given set, atomically. Memberships not in the new set are removed; new
// ones are appended with the next per-album order value; surviving
// memberships keep their order untouched.
func (r *PhotoRepository) AssignAlbums(photoID uint, albumIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		remove := tx.Where("photo_id = ?", photoID)
		if len(albumIDs) > 0 {
			remove = remove.Where("album_id NOT IN ?", albumIDs)
		}
		if err := remove.Delete(&models.PhotoInAlbum{}).Error; err != nil {
			return fmt.Errorf("failed to remove unselected memberships for photo %d: %w", photoID, err)
		}

		for _, albumID := range albumIDs {
			var count int64
			if err := tx.Model(&models.PhotoInAlbum{}).
				Where("photo_id = ? AND album_id = ?", photoID, albumID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check membership for photo %d in album %d: %w", photoID, albumID, err)
			}
			if count > 0 {
				continue
			}

			var maxOrder int
			row := tx.Model(&models.PhotoInAlbum{}).
				Where("album_id = ?", albumID).
				Select("COALESCE(MAX(photo_order), 0)").
				Row()
			if err := row.Scan(&maxOrder); err != nil {
				return fmt.Errorf("failed to find max order for album %d: %w", albumID, err)
			}

			membership := models.PhotoInAlbum{AlbumID: albumID, PhotoID: photoID, Order: maxOrder + 1}
			if err := tx.Create(&membership).Error; err != nil {
				return fmt.Errorf("failed to add photo %d to album %d: %w", photoID, albumID, err)
			}
		}
		return nil
	})
}

// AssignTags replaces the photo's tag links with the given set.
// Orphaned-tag garbage collection is a separate step run on every photo
// save (see TagRepository.DeleteOrphans).
func (r *PhotoRepository) AssignTags(photoID uint, tagIDs []uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		remove := tx.Where("photo_id = ?", photoID)
		if len(tagIDs) > 0 {
			remove = remove.Where("tag_id NOT IN ?", tagIDs)
		}
		if err := remove.Delete(&models.PhotoTag{}).Error; err != nil {
			return fmt.Errorf("failed to remove unselected tags for photo %d: %w", photoID, err)
		}

		for _, tagID := range tagIDs {
			var count int64
			if err := tx.Model(&models.PhotoTag{}).
				Where("photo_id = ? AND tag_id = ?", photoID, tagID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check tag link for photo %d: %w", photoID, err)
			}
			if count > 0 {
				continue
			}
			if err := tx.Create(&models.PhotoTag{PhotoID: photoID, TagID: tagID}).Error; err != nil {
				return fmt.Errorf("failed to link tag %d to photo %d: %w", tagID, photoID, err)
			}
		}
		return nil
	})
}

// UpsertMetadata creates or fully overwrites the photo's metadata record
// from an extraction result. Extraction is idempotent and authoritative
// over whatever was stored before.
func (r *PhotoRepository) UpsertMetadata(photoID uint, extracted *media.ExtractedMetadata) error {
	now := time.Now().Unix()

	var meta models.PhotoMetadata
	err := r.DB.Where("photo_id = ?", photoID).First(&meta).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up metadata for photo %d: %w", photoID, err)
		}
		meta = models.PhotoMetadata{PhotoID: photoID, PublicID: uuid.NewString(), CreatedAt: now}
	}

	meta.CaptureDate = extracted.CaptureDate
	meta.Rating = extracted.Rating
	meta.CameraMake = extracted.CameraMake
	meta.CameraModel = extracted.CameraModel
	meta.LensModel = extracted.LensModel
	meta.FocalLength = extracted.FocalLength
	meta.FocalLength35mm = extracted.FocalLength35mm
	meta.Aperture = extracted.Aperture
	meta.ShutterSpeed = extracted.ShutterSpeed
	meta.ISO = extracted.ISO
	meta.ExposureProgram = extracted.ExposureProgram
	meta.ExposureCompensation = extracted.ExposureCompensation
	meta.Flash = extracted.Flash
	meta.Copyright = extracted.Copyright
	meta.RawLatitude = extracted.Latitude
	meta.RawLongitude = extracted.Longitude
	meta.UpdatedAt = now

	if err := r.DB.Save(&meta).Error; err != nil {
		return fmt.Errorf("failed to upsert metadata for photo %d: %w", photoID, err)
	}
	return nil
}

// GetMetadata retrieves the photo's metadata record.
func (r *PhotoRepository) GetMetadata(photoID uint) (*models.PhotoMetadata, error) {
	var meta models.PhotoMetadata
	err := r.DB.Where("photo_id = ?", photoID).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get metadata for photo %d: %w", photoID, err)
	}
	return &meta, nil
}

// ListMissingMetadata retrieves photos with no metadata record yet.
func (r *PhotoRepository) ListMissingMetadata() ([]models.Photo, error) {
	var photos []models.Photo
	err := r.DB.
		Joins("LEFT JOIN photo_metadata ON photo_metadata.photo_id = photos.id").
		Where("photo_metadata.id IS NULL").
		Find(&photos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list photos missing metadata: %w", err)
	}
	return photos, nil
}
