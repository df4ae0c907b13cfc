package models

// Size is a named output specification for derived images.
// Builtin sizes are seeded at startup: their slug and comment are
// immutable and they cannot be deleted. CanEdit=false locks the size
// against any modification.
type Size struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID string `gorm:"not null;unique;index" json:"uuid"`
	Slug     string `gorm:"not null;unique" json:"slug"`
	Comment  string `gorm:"default:''" json:"comment"`

	MaxDimension int  `gorm:"not null" json:"max_dimension"` // pixels, longest side
	SquareCrop   bool `gorm:"not null;default:false" json:"square_crop"`

	// No default tags on these: gorm drops zero-valued fields carrying a
	// default from INSERTs, which would store CanEdit=false as true.
	Builtin bool `gorm:"not null" json:"builtin"`
	CanEdit bool `gorm:"not null" json:"can_edit"`
	Public  bool `gorm:"not null" json:"public"` // allow in the public API

	CreatedAt int64 `gorm:"not null" json:"created_at"`
	UpdatedAt int64 `gorm:"not null" json:"updated_at"`
}

// TableName explicitly sets the table name for GORM.
func (Size) TableName() string {
	return "sizes"
}

// PhotoSize is a derived image artifact for a (photo, size) pair. It is
// entirely regenerable from the photo's original file; deleting a row is
// always safe and merely triggers regeneration on the next sweep.
type PhotoSize struct {
	ID      uint `gorm:"primaryKey;autoIncrement" json:"id"`
	PhotoID uint `gorm:"not null;uniqueIndex:idx_photo_size" json:"photo_id"`
	SizeID  uint `gorm:"not null;uniqueIndex:idx_photo_size" json:"size_id"`

	ImagePath string `gorm:"not null" json:"image_path"` // path relative to media root
	Height    *int   `gorm:"" json:"height,omitempty"`   // Nullable
	Width     *int   `gorm:"" json:"width,omitempty"`    // Nullable
	MD5       *string `gorm:"" json:"md5,omitempty"`     // Nullable, hash of encoded bytes

	CreatedAt int64 `gorm:"not null" json:"created_at"`

	Size *Size `gorm:"foreignKey:SizeID" json:"size,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoSize) TableName() string {
	return "photo_sizes"
}

// IsComplete reports whether the artifact record carries everything the
// reconciler expects; incomplete records are deleted and regenerated.
func (ps *PhotoSize) IsComplete() bool {
	return ps.ImagePath != "" && ps.Height != nil && ps.Width != nil && ps.MD5 != nil
}
