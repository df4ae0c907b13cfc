package repository

import (
	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
)

// Range is an inclusive numeric filter bound pair. An inverted range
// (Lower > Upper) matches nothing.
type Range struct {
	Lower float64
	Upper float64
}

// PhotoListFilter narrows public photo listings. Location filters only
// match photos with both coordinates set and the location not hidden.
type PhotoListFilter struct {
	Latitude  *Range
	Longitude *Range
}

// PhotoRepositoryInterface defines the methods for photo data operations
type PhotoRepositoryInterface interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetByPublicID(publicID string) (*models.Photo, error)
	GetPublishedByPublicID(publicID string) (*models.Photo, error)
	ListAll() ([]models.Photo, error)
	ListPublished(filter *PhotoListFilter) ([]models.Photo, error)
	ListPublishedByTag(tagID uint) ([]models.Photo, error)
	Update(photo *models.Photo) error
	SetPublished(photoID uint, published bool) error
	SetLocation(photoID uint, latitude, longitude float64) error
	Delete(id uint) error

	AssignAlbums(photoID uint, albumIDs []uint) error
	AssignTags(photoID uint, tagIDs []uint) error

	UpsertMetadata(photoID uint, extracted *media.ExtractedMetadata) error
	GetMetadata(photoID uint) (*models.PhotoMetadata, error)
	ListMissingMetadata() ([]models.Photo, error)
}

// AlbumRepositoryInterface defines the methods for album data operations
type AlbumRepositoryInterface interface {
	Create(album *models.Album) error
	GetByID(id uint) (*models.Album, error)
	GetByPublicID(publicID string) (*models.Album, error)
	GetBySlug(slug string) (*models.Album, error)
	ListAll() ([]models.Album, error)
	ListChildren(albumID uint) ([]models.Album, error)
	Update(album *models.Album) error
	Delete(id uint) error

	GetOrderedPhotos(album *models.Album, publicOnly bool) ([]models.Photo, error)
	ListMemberships(albumID uint) ([]models.PhotoInAlbum, error)
}

// TagRepositoryInterface defines the methods for tag data operations.
// Rename returns the surviving tag: on a merge that is the pre-existing
// tag with the requested name, not the one identified by tagID.
type TagRepositoryInterface interface {
	Create(tag *models.Tag) error
	GetByID(id uint) (*models.Tag, error)
	GetByPublicID(publicID string) (*models.Tag, error)
	GetByName(name string) (*models.Tag, error)
	ListAll() ([]models.Tag, error)
	Rename(tagID uint, newName string) (*models.Tag, error)
	Delete(id uint) error
	DeleteOrphans() (int64, error)
}

// SizeRepositoryInterface defines the methods for size registry operations
type SizeRepositoryInterface interface {
	Create(size *models.Size) error
	GetByID(id uint) (*models.Size, error)
	GetBySlug(slug string) (*models.Size, error)
	GetByPublicID(publicID string) (*models.Size, error)
	ListAll() ([]models.Size, error)
	ListPublic() ([]models.Size, error)
	Count() (int64, error)
	Update(size *models.Size) error
	Delete(id uint) error
}

// PhotoSizeRepositoryInterface defines the methods for derived artifact records
type PhotoSizeRepositoryInterface interface {
	Create(photoSize *models.PhotoSize) error
	Exists(photoID, sizeID uint) (bool, error)
	GetPublicBySlug(photoID uint, sizeSlug string) (*models.PhotoSize, error)
	ListByPhoto(photoID uint) ([]models.PhotoSize, error)
	ListPublicByPhoto(photoID uint) ([]models.PhotoSize, error)
	ListAll() ([]models.PhotoSize, error)
	CountByPhoto(photoID uint) (int64, error)
	Delete(id uint) error
	DeleteByPhoto(photoID uint) ([]string, error)
	DeleteBySize(sizeID uint) ([]string, error)
}

// APIKeyRepositoryInterface defines the methods for API key lookups
type APIKeyRepositoryInterface interface {
	ListAll() ([]models.APIKey, error)
	Create(label, plaintext string) (*models.APIKey, error)
}
