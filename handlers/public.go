package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/database"
	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/repository"
)

// PublicHandler serves the read-only published surface. Everything here
// sits behind API-key auth and only ever sees published photos.
type PublicHandler struct {
	PhotoRepo repository.PhotoRepositoryInterface
	AlbumRepo repository.AlbumRepositoryInterface
	TagRepo   repository.TagRepositoryInterface
	SizeRepo  repository.SizeRepositoryInterface
	PSRepo    repository.PhotoSizeRepositoryInterface
	Store     media.Store
	DB        *gorm.DB
}

// parseLocationFilter reads the optional bounding-box query parameters.
// Each axis must arrive as a complete pair; a half-open or unparsable
// bound is a validation failure, not an empty result.
func parseLocationFilter(r *http.Request) (*repository.PhotoListFilter, error) {
	q := r.URL.Query()

	parseAxis := func(lowerKey, upperKey string) (*repository.Range, error) {
		lowerStr, upperStr := q.Get(lowerKey), q.Get(upperKey)
		if lowerStr == "" && upperStr == "" {
			return nil, nil
		}
		if lowerStr == "" || upperStr == "" {
			return nil, fmt.Errorf("%s and %s must be provided together", lowerKey, upperKey)
		}
		lower, err := strconv.ParseFloat(lowerStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", lowerKey, lowerStr)
		}
		upper, err := strconv.ParseFloat(upperStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", upperKey, upperStr)
		}
		return &repository.Range{Lower: lower, Upper: upper}, nil
	}

	lat, err := parseAxis("latitude_lower_bound", "latitude_upper_bound")
	if err != nil {
		return nil, err
	}
	lon, err := parseAxis("longitude_lower_bound", "longitude_upper_bound")
	if err != nil {
		return nil, err
	}
	if lat == nil && lon == nil {
		return nil, nil
	}
	return &repository.PhotoListFilter{Latitude: lat, Longitude: lon}, nil
}

// ListPhotos returns published photos, newest publish date first.
// Renditions are attached per photo when include_sizes=true.
func (ph *PublicHandler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	filter, err := parseLocationFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	includeSizes := r.URL.Query().Get("include_sizes") == "true"

	photos, err := ph.PhotoRepo.ListPublished(filter)
	if err != nil {
		writeRepoError(w, err, "listing published photos")
		return
	}

	out := make([]PhotoSummary, 0, len(photos))
	for i := range photos {
		photo := &photos[i]
		if includeSizes {
			renditions, err := ph.PSRepo.ListPublicByPhoto(photo.ID)
			if err != nil {
				writeRepoError(w, err, "loading photo renditions")
				return
			}
			photo.Sizes = renditions
		}
		out = append(out, serializePhotoSummary(photo, includeSizes))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetPhoto returns the full public shape of one published photo.
func (ph *PublicHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := ph.PhotoRepo.GetPublishedByPublicID(chi.URLParam(r, "photoUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching photo")
		return
	}
	writeJSON(w, http.StatusOK, serializePhotoDetail(photo))
}

// GetPhotoImage streams a rendition. An unpublished photo, an unknown
// size slug, a private size, and a missing file all present the same
// 404, so the public surface leaks nothing about hidden content.
func (ph *PublicHandler) GetPhotoImage(w http.ResponseWriter, r *http.Request) {
	photo, err := ph.PhotoRepo.GetPublishedByPublicID(chi.URLParam(r, "photoUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching photo for image")
		return
	}

	rendition, err := ph.PSRepo.GetPublicBySlug(photo.ID, chi.URLParam(r, "sizeSlug"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		writeRepoError(w, err, "fetching rendition")
		return
	}

	reader, info, err := ph.Store.Get(rendition.ImagePath)
	if err != nil {
		log.Printf("Error opening rendition file %s: %v", rendition.ImagePath, err)
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, reader); err != nil {
		log.Printf("Error streaming rendition %s: %v", rendition.ImagePath, err)
	}
}

// ListAlbums returns all albums in their summary shape.
func (ph *PublicHandler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := ph.AlbumRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing albums")
		return
	}
	out := make([]AlbumSummary, 0, len(albums))
	for i := range albums {
		out = append(out, serializeAlbumSummary(&albums[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAlbum returns one album with its children and its published photos
// in the album's configured order.
func (ph *PublicHandler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := ph.AlbumRepo.GetByPublicID(chi.URLParam(r, "albumUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching album")
		return
	}

	children, err := ph.AlbumRepo.ListChildren(album.ID)
	if err != nil {
		writeRepoError(w, err, "listing album children")
		return
	}
	photos, err := ph.AlbumRepo.GetOrderedPhotos(album, true)
	if err != nil {
		writeRepoError(w, err, "ordering album photos")
		return
	}

	detail := AlbumDetail{
		AlbumSummary:   serializeAlbumSummary(album),
		Description:    album.Description,
		SortMethod:     album.SortMethod,
		SortDescending: album.SortDescending,
		Children:       make([]AlbumSummary, 0, len(children)),
		Photos:         make([]PhotoSummary, 0, len(photos)),
	}
	if album.ParentID != nil {
		parent, err := ph.AlbumRepo.GetByID(*album.ParentID)
		if err != nil {
			writeRepoError(w, err, "fetching parent album")
			return
		}
		summary := serializeAlbumSummary(parent)
		detail.Parent = &summary
	}
	for i := range children {
		detail.Children = append(detail.Children, serializeAlbumSummary(&children[i]))
	}
	for i := range photos {
		detail.Photos = append(detail.Photos, serializePhotoSummary(&photos[i], false))
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListTags returns every tag.
func (ph *PublicHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := ph.TagRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing tags")
		return
	}
	out := make([]TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, serializeTag(&tags[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTag returns one tag with its published photos.
func (ph *PublicHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := ph.TagRepo.GetByPublicID(chi.URLParam(r, "tagUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching tag")
		return
	}
	photos, err := ph.PhotoRepo.ListPublishedByTag(tag.ID)
	if err != nil {
		writeRepoError(w, err, "listing tag photos")
		return
	}

	detail := TagDetail{TagResponse: serializeTag(tag), Photos: make([]PhotoSummary, 0, len(photos))}
	for i := range photos {
		detail.Photos = append(detail.Photos, serializePhotoSummary(&photos[i], false))
	}
	writeJSON(w, http.StatusOK, detail)
}

// ListSizes returns the publicly visible size registry.
func (ph *PublicHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := ph.SizeRepo.ListPublic()
	if err != nil {
		writeRepoError(w, err, "listing sizes")
		return
	}
	out := make([]SizeResponse, 0, len(sizes))
	for i := range sizes {
		out = append(out, serializeSize(&sizes[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSize returns one size by slug. Non-public sizes are indistinguishable
// from unknown slugs.
func (ph *PublicHandler) GetSize(w http.ResponseWriter, r *http.Request) {
	size, err := ph.SizeRepo.GetBySlug(chi.URLParam(r, "sizeSlug"))
	if err != nil {
		// writeRepoError keeps not-found as a plain 404 and logs real
		// DB failures instead of masking them
		writeRepoError(w, err, "fetching size")
		return
	}
	if !size.Public {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, serializeSize(size))
}

// Health reports aggregate content and backlog statistics.
func (ph *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := ph.DB.DB()
	if err != nil {
		writeRepoError(w, err, "acquiring database handle")
		return
	}
	stats, err := database.GetSiteHealth(sqlDB)
	if err != nil {
		writeRepoError(w, err, "computing site health")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
