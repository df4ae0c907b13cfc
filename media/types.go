package media

type AssetType string

const (
	AssetTypeRaw     AssetType = "raw"     // original uploads
	AssetTypeResized AssetType = "resized" // derived renditions
)

// ExtractedMetadata carries the fixed field set pulled from an original
// file. Every field is optional; absent or unparsable values stay nil.
type ExtractedMetadata struct {
	CaptureDate *int64   `json:"capture_date,omitempty"`
	Rating      *int     `json:"rating,omitempty"`
	CameraMake  *string  `json:"camera_make,omitempty"`
	CameraModel *string  `json:"camera_model,omitempty"`
	LensModel   *string  `json:"lens_model,omitempty"`

	FocalLength     *float64 `json:"focal_length,omitempty"`
	FocalLength35mm *float64 `json:"focal_length_35mm,omitempty"`
	Aperture        *float64 `json:"aperture,omitempty"`
	ShutterSpeed    *float64 `json:"shutter_speed,omitempty"`
	ISO             *int     `json:"iso,omitempty"`

	ExposureProgram      *string  `json:"exposure_program,omitempty"`
	ExposureCompensation *float64 `json:"exposure_compensation,omitempty"`
	Flash                *string  `json:"flash,omitempty"`

	Copyright *string `json:"copyright,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// IsEmpty reports whether extraction found nothing at all.
func (m *ExtractedMetadata) IsEmpty() bool {
	return m.CaptureDate == nil && m.Rating == nil && m.CameraMake == nil &&
		m.CameraModel == nil && m.LensModel == nil && m.FocalLength == nil &&
		m.FocalLength35mm == nil && m.Aperture == nil && m.ShutterSpeed == nil &&
		m.ISO == nil && m.ExposureProgram == nil && m.ExposureCompensation == nil &&
		m.Flash == nil && m.Copyright == nil && m.Latitude == nil && m.Longitude == nil
}

// SizeSpec is the subset of the size registry the generator needs.
type SizeSpec struct {
	Slug         string
	MaxDimension int
	SquareCrop   bool
}

// GeneratedSize describes one produced rendition.
type GeneratedSize struct {
	RelativePath string // path within the store
	Width        int
	Height       int
	MD5          string // hash of the encoded bytes on disk
}
