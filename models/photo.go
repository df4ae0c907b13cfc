package models

import "time"

// Photo represents an uploaded photo in the database using GORM.
// It corresponds to the 'photos' table.
type Photo struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID    string  `gorm:"not null;unique;index" json:"uuid"`
	Title       string  `gorm:"not null" json:"title"`
	Slug        string  `gorm:"not null;unique" json:"slug"`
	Description string  `gorm:"default:''" json:"description"`
	RawImagePath string `gorm:"not null" json:"raw_image_path"` // path relative to media root

	PublishDate int64 `gorm:"not null" json:"publish_date"` // Unix timestamp
	Hidden      bool  `gorm:"not null;default:false" json:"hidden"`
	// Published is maintained by the publish-state engine. It is fully
	// derivable from Hidden and PublishDate and is never the sole
	// authority; it exists so listings can filter without recomputing.
	Published bool `gorm:"not null;default:false" json:"published"`

	Latitude     *float64 `gorm:"" json:"latitude,omitempty"`  // Nullable
	Longitude    *float64 `gorm:"" json:"longitude,omitempty"` // Nullable
	HideLocation bool     `gorm:"not null;default:false" json:"hide_location"`

	CustomAttributes JSONMap `gorm:"type:text;default:'{}'" json:"custom_attributes"`

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp

	// Relationships
	Metadata *PhotoMetadata `gorm:"foreignKey:PhotoID" json:"metadata,omitempty"`
	Sizes    []PhotoSize    `gorm:"foreignKey:PhotoID" json:"sizes,omitempty"`
	Tags     []Tag          `gorm:"many2many:photo_tags;" json:"tags,omitempty"`
	Albums   []Album        `gorm:"many2many:photo_in_albums;" json:"albums,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Photo) TableName() string {
	return "photos"
}

// CalculatePublished derives the public visibility of the photo at the
// given instant: not hidden, and the publish date has been reached. The
// boundary is inclusive; a photo publishing exactly now is published.
func (p *Photo) CalculatePublished(now time.Time) bool {
	return !p.Hidden && p.PublishDate <= now.Unix()
}

// HasLocation reports whether both coordinates are set.
func (p *Photo) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// PhotoMetadata holds capture metadata extracted from the original file.
// It is system-generated: only the metadata extractor writes it, and it
// can be deleted and regenerated at any time.
type PhotoMetadata struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID string `gorm:"not null;unique;index" json:"uuid"`
	PhotoID  uint   `gorm:"not null;uniqueIndex" json:"photo_id"`

	CaptureDate *int64 `gorm:"index" json:"capture_date,omitempty"` // Nullable, Unix timestamp
	Rating      *int   `gorm:"" json:"rating,omitempty"`            // Nullable

	CameraMake  *string `gorm:"" json:"camera_make,omitempty"`  // Nullable
	CameraModel *string `gorm:"" json:"camera_model,omitempty"` // Nullable
	LensModel   *string `gorm:"" json:"lens_model,omitempty"`   // Nullable

	FocalLength     *float64 `gorm:"" json:"focal_length,omitempty"`      // Nullable, mm
	FocalLength35mm *float64 `gorm:"" json:"focal_length_35mm,omitempty"` // Nullable, mm
	Aperture        *float64 `gorm:"" json:"aperture,omitempty"`          // Nullable, F-number
	ShutterSpeed    *float64 `gorm:"" json:"shutter_speed,omitempty"`     // Nullable, seconds
	ISO             *int     `gorm:"" json:"iso,omitempty"`               // Nullable

	ExposureProgram      *string  `gorm:"" json:"exposure_program,omitempty"`      // Nullable
	ExposureCompensation *float64 `gorm:"" json:"exposure_compensation,omitempty"` // Nullable, EV
	Flash                *string  `gorm:"" json:"flash,omitempty"`                 // Nullable

	Copyright *string `gorm:"" json:"copyright,omitempty"` // Nullable

	// Raw GPS readings from the file, kept separate from the photo's
	// authoritative (operator-editable) coordinates.
	RawLatitude  *float64 `gorm:"" json:"-"`
	RawLongitude *float64 `gorm:"" json:"-"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoMetadata) TableName() string {
	return "photo_metadata"
}

// Tag is a normalized (lowercase, trimmed) label attached to photos.
type Tag struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID string `gorm:"not null;unique;index" json:"uuid"`
	Name     string `gorm:"not null;unique" json:"name"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`

	Photos []Photo `gorm:"many2many:photo_tags;" json:"photos,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}

// PhotoTag is the photo<->tag join row.
type PhotoTag struct {
	PhotoID uint `gorm:"primaryKey" json:"photo_id"`
	TagID   uint `gorm:"primaryKey" json:"tag_id"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoTag) TableName() string {
	return "photo_tags"
}
