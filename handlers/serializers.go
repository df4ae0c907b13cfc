package handlers

import (
	"fmt"

	"github.com/camden-git/photocmsbackend/models"
)

// PhotoSizeResponse is one available rendition of a photo. The uuid and
// slug come from the size registry entry, not the rendition row.
type PhotoSizeResponse struct {
	UUID   string  `json:"uuid"`
	Slug   string  `json:"slug"`
	Width  *int    `json:"width"`
	Height *int    `json:"height"`
	MD5    *string `json:"md5,omitempty"`
	URL    string  `json:"url"`
}

// PhotoSummary is the public listing shape.
type PhotoSummary struct {
	UUID        string   `json:"uuid"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Description string   `json:"description,omitempty"`
	PublishDate int64    `json:"publish_date"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`

	Sizes []PhotoSizeResponse `json:"sizes,omitempty"`
}

// PhotoMetadataResponse is the flattened capture metadata block. The raw
// GPS readings never appear here; location exposure goes through the
// photo's own coordinates and its hide flag.
type PhotoMetadataResponse struct {
	CaptureDate          *int64   `json:"capture_date,omitempty"`
	Rating               *int     `json:"rating,omitempty"`
	CameraMake           *string  `json:"camera_make,omitempty"`
	CameraModel          *string  `json:"camera_model,omitempty"`
	LensModel            *string  `json:"lens_model,omitempty"`
	FocalLength          *float64 `json:"focal_length,omitempty"`
	FocalLength35mm      *float64 `json:"focal_length_35mm,omitempty"`
	Aperture             *float64 `json:"aperture,omitempty"`
	ShutterSpeed         *float64 `json:"shutter_speed,omitempty"`
	ISO                  *int     `json:"iso,omitempty"`
	ExposureProgram      *string  `json:"exposure_program,omitempty"`
	ExposureCompensation *float64 `json:"exposure_compensation,omitempty"`
	Flash                *string  `json:"flash,omitempty"`
	Copyright            *string  `json:"copyright,omitempty"`
}

// LocationResponse is the coordinate pair exposed on a photo detail when
// the photo carries one and it is not hidden.
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PhotoDetail is the full public photo shape.
type PhotoDetail struct {
	PhotoSummary
	CustomAttributes models.JSONMap         `json:"custom_attributes"`
	Metadata         *PhotoMetadataResponse `json:"metadata,omitempty"`
	Tags             []TagResponse          `json:"tags"`
	Albums           []AlbumSummary         `json:"albums"`
	Location         *LocationResponse      `json:"location"`
}

// AlbumSummary is the public album listing shape. The internal row id
// never leaves the server; albums are identified by uuid and slug.
type AlbumSummary struct {
	UUID             string `json:"uuid"`
	Title            string `json:"title"`
	Slug             string `json:"slug"`
	ShortDescription string `json:"short_description,omitempty"`
}

// AlbumDetail adds the full description, sort settings, parentage and
// the ordered published photos.
type AlbumDetail struct {
	AlbumSummary
	Description    string         `json:"description,omitempty"`
	SortMethod     string         `json:"sort_method"`
	SortDescending bool           `json:"sort_descending"`
	Parent         *AlbumSummary  `json:"parent"`
	Children       []AlbumSummary `json:"children"`
	Photos         []PhotoSummary `json:"photos"`
}

// TagResponse is the public tag shape.
type TagResponse struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// TagDetail adds the published photos carrying the tag.
type TagDetail struct {
	TagResponse
	Photos []PhotoSummary `json:"photos"`
}

// SizeResponse is the public size registry shape.
type SizeResponse struct {
	UUID         string `json:"uuid"`
	Slug         string `json:"slug"`
	Comment      string `json:"comment,omitempty"`
	MaxDimension int    `json:"max_dimension"`
	SquareCrop   bool   `json:"square_crop"`
}

func photoImageURL(photoUUID, sizeSlug string) string {
	return fmt.Sprintf("/api/public/photos/%s/image/%s", photoUUID, sizeSlug)
}

// serializeSizes maps rendition records to their public shape, skipping
// any whose size registry entry is not public or not preloaded.
func serializeSizes(photo *models.Photo, renditions []models.PhotoSize) []PhotoSizeResponse {
	out := make([]PhotoSizeResponse, 0, len(renditions))
	for i := range renditions {
		rec := &renditions[i]
		if rec.Size == nil || !rec.Size.Public {
			continue
		}
		out = append(out, PhotoSizeResponse{
			UUID:   rec.Size.PublicID,
			Slug:   rec.Size.Slug,
			Width:  rec.Width,
			Height: rec.Height,
			MD5:    rec.MD5,
			URL:    photoImageURL(photo.PublicID, rec.Size.Slug),
		})
	}
	return out
}

// serializePhotoSummary builds the listing shape. Coordinates are only
// exposed when the photo carries both and the location is not hidden.
func serializePhotoSummary(photo *models.Photo, includeSizes bool) PhotoSummary {
	summary := PhotoSummary{
		UUID:        photo.PublicID,
		Title:       photo.Title,
		Slug:        photo.Slug,
		Description: photo.Description,
		PublishDate: photo.PublishDate,
	}
	if photo.HasLocation() && !photo.HideLocation {
		summary.Latitude = photo.Latitude
		summary.Longitude = photo.Longitude
	}
	if includeSizes {
		summary.Sizes = serializeSizes(photo, photo.Sizes)
	}
	return summary
}

func serializeMetadata(meta *models.PhotoMetadata) *PhotoMetadataResponse {
	if meta == nil {
		return nil
	}
	return &PhotoMetadataResponse{
		CaptureDate:          meta.CaptureDate,
		Rating:               meta.Rating,
		CameraMake:           meta.CameraMake,
		CameraModel:          meta.CameraModel,
		LensModel:            meta.LensModel,
		FocalLength:          meta.FocalLength,
		FocalLength35mm:      meta.FocalLength35mm,
		Aperture:             meta.Aperture,
		ShutterSpeed:         meta.ShutterSpeed,
		ISO:                  meta.ISO,
		ExposureProgram:      meta.ExposureProgram,
		ExposureCompensation: meta.ExposureCompensation,
		Flash:                meta.Flash,
		Copyright:            meta.Copyright,
	}
}

func serializePhotoDetail(photo *models.Photo) PhotoDetail {
	detail := PhotoDetail{
		PhotoSummary:     serializePhotoSummary(photo, true),
		CustomAttributes: photo.CustomAttributes,
		Metadata:         serializeMetadata(photo.Metadata),
		Tags:             make([]TagResponse, 0, len(photo.Tags)),
		Albums:           make([]AlbumSummary, 0, len(photo.Albums)),
	}
	if detail.CustomAttributes == nil {
		detail.CustomAttributes = models.JSONMap{}
	}
	for i := range photo.Tags {
		detail.Tags = append(detail.Tags, serializeTag(&photo.Tags[i]))
	}
	for i := range photo.Albums {
		detail.Albums = append(detail.Albums, serializeAlbumSummary(&photo.Albums[i]))
	}
	if photo.HasLocation() && !photo.HideLocation {
		detail.Location = &LocationResponse{Latitude: *photo.Latitude, Longitude: *photo.Longitude}
	}
	return detail
}

func serializeAlbumSummary(album *models.Album) AlbumSummary {
	return AlbumSummary{
		UUID:             album.PublicID,
		Title:            album.Title,
		Slug:             album.Slug,
		ShortDescription: album.ShortDescription,
	}
}

func serializeTag(tag *models.Tag) TagResponse {
	return TagResponse{UUID: tag.PublicID, Name: tag.Name}
}

func serializeSize(size *models.Size) SizeResponse {
	return SizeResponse{
		UUID:         size.PublicID,
		Slug:         size.Slug,
		Comment:      size.Comment,
		MaxDimension: size.MaxDimension,
		SquareCrop:   size.SquareCrop,
	}
}
