package models

// Album sort methods. MANUAL uses the per-album membership order and
// ignores SortDescending; RANDOM shuffles on every read.
const (
	SortMethodCreated   = "CREATED"
	SortMethodPublished = "PUBLISHED"
	SortMethodManual    = "MANUAL"
	SortMethodRandom    = "RANDOM"
)

const DefaultSortMethod = SortMethodPublished

// IsValidSortMethod checks if a string is a valid album sort method
func IsValidSortMethod(method string) bool {
	switch method {
	case SortMethodCreated, SortMethodPublished, SortMethodManual, SortMethodRandom:
		return true
	default:
		return false
	}
}

// Album represents an album of photos in the database using GORM.
// It corresponds to the 'albums' table. Albums form a tree via ParentID;
// cycle prevention is enforced by the repository's ancestor walk.
type Album struct {
	ID               uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID         string `gorm:"not null;unique;index" json:"uuid"`
	Title            string `gorm:"not null;unique" json:"title"`
	Slug             string `gorm:"not null;unique" json:"slug"`
	ShortDescription string `gorm:"default:''" json:"short_description"`
	Description      string `gorm:"default:''" json:"description"`

	SortMethod     string `gorm:"not null;default:'PUBLISHED'" json:"sort_method"`
	SortDescending bool   `gorm:"not null;default:false" json:"sort_descending"`

	ParentID *uint `gorm:"index" json:"parent_id,omitempty"` // Nullable

	CreatedAt int64 `gorm:"not null" json:"created_at"` // Unix timestamp
	UpdatedAt int64 `gorm:"not null" json:"updated_at"` // Unix timestamp

	Photos []Photo `gorm:"many2many:photo_in_albums;" json:"photos,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Album) TableName() string {
	return "albums"
}

// PhotoInAlbum is the ordered album membership join row. Order values
// are per-album, assigned sequentially on insertion and never
// renumbered afterwards.
type PhotoInAlbum struct {
	AlbumID uint `gorm:"primaryKey" json:"album_id"`
	PhotoID uint `gorm:"primaryKey" json:"photo_id"`
	Order   int  `gorm:"not null;column:photo_order" json:"order"`
}

// TableName explicitly sets the table name for GORM.
func (PhotoInAlbum) TableName() string {
	return "photo_in_albums"
}
