package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/media"
	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
	"github.com/camden-git/photocmsbackend/services"
	"github.com/camden-git/photocmsbackend/utils"
	"github.com/camden-git/photocmsbackend/workers"
)

const maxUploadBytes = 100 << 20 // 100 MiB

// AdminPhotoHandler owns the photo write surface: upload, edit, tag and
// album assignment, and deletion.
type AdminPhotoHandler struct {
	PhotoRepo repository.PhotoRepositoryInterface
	TagRepo   repository.TagRepositoryInterface
	AlbumRepo repository.AlbumRepositoryInterface
	PSRepo    repository.PhotoSizeRepositoryInterface
	Store     media.Store
	Tasks     *workers.TaskProcessor
	Publisher *services.Publisher
}

// Upload accepts a multipart original, stores it under a randomized
// name, creates the photo row and queues the processing pipeline. The
// row is committed before the pipeline task is queued, so a worker can
// never observe a photo that is not yet visible to it.
func (h *AdminPhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing 'file' field")
		return
	}
	defer file.Close()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}
	if title == "" {
		writeError(w, http.StatusBadRequest, "a title or a named file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}

	relPath, err := h.Store.Save(media.AssetTypeRaw, utils.RandomizedFilename(title, ext), file)
	if err != nil {
		log.Printf("Error saving uploaded original: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store uploaded file")
		return
	}

	photo := &models.Photo{
		Title:        title,
		Description:  r.FormValue("description"),
		RawImagePath: relPath,
		Hidden:       r.FormValue("hidden") == "true",
	}
	if err := h.PhotoRepo.Create(photo); err != nil {
		// the row never existed, so remove the stored original
		if delErr := h.Store.Delete(relPath); delErr != nil {
			log.Printf("Error cleaning up original after failed create: %v", delErr)
		}
		writeRepoError(w, err, "creating photo")
		return
	}

	h.Tasks.QueueTask(workers.Task{Type: workers.TaskPhotoPipeline, PhotoID: photo.ID})
	writeJSON(w, http.StatusCreated, photo)
}

// List returns every photo in natural title order.
func (h *AdminPhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	photos, err := h.PhotoRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing photos")
		return
	}
	writeJSON(w, http.StatusOK, photos)
}

// Get returns one photo with all relations, published or not.
func (h *AdminPhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	photo, err := h.PhotoRepo.GetByPublicID(chi.URLParam(r, "photoUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching photo")
		return
	}
	writeJSON(w, http.StatusOK, photo)
}

type photoUpdateRequest struct {
	Title            *string         `json:"title"`
	Slug             *string         `json:"slug"`
	Description      *string         `json:"description"`
	PublishDate      *int64          `json:"publish_date"`
	Hidden           *bool           `json:"hidden"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	ClearLocation    bool            `json:"clear_location"`
	HideLocation     *bool           `json:"hide_location"`
	CustomAttributes *models.JSONMap `json:"custom_attributes"`
	Tags             *[]string       `json:"tags"`
	AlbumUUIDs       *[]string       `json:"album_uuids"`
}

// Update edits a photo. Absent fields are untouched; tags and album
// assignments replace the existing sets when present. Every save path
// runs the publish recompute afterwards, so visibility transitions fire
// their signals no matter which field changed.
func (h *AdminPhotoHandler) Update(w http.ResponseWriter, r *http.Request) {
	photo, err := h.PhotoRepo.GetByPublicID(chi.URLParam(r, "photoUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching photo for update")
		return
	}

	var req photoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Title != nil {
		photo.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		photo.Slug = utils.Slugify(*req.Slug)
	}
	if req.Description != nil {
		photo.Description = *req.Description
	}
	if req.PublishDate != nil {
		photo.PublishDate = *req.PublishDate
	}
	if req.Hidden != nil {
		photo.Hidden = *req.Hidden
	}
	if req.ClearLocation {
		photo.Latitude = nil
		photo.Longitude = nil
	} else {
		if req.Latitude != nil {
			photo.Latitude = req.Latitude
		}
		if req.Longitude != nil {
			photo.Longitude = req.Longitude
		}
	}
	if req.HideLocation != nil {
		photo.HideLocation = *req.HideLocation
	}
	if req.CustomAttributes != nil {
		photo.CustomAttributes = *req.CustomAttributes
	}

	if err := h.PhotoRepo.Update(photo); err != nil {
		writeRepoError(w, err, "updating photo")
		return
	}

	if req.Tags != nil {
		tagIDs := make([]uint, 0, len(*req.Tags))
		for _, name := range *req.Tags {
			tag := &models.Tag{Name: name}
			if err := h.TagRepo.Create(tag); err != nil {
				writeRepoError(w, err, "resolving tag")
				return
			}
			tagIDs = append(tagIDs, tag.ID)
		}
		if err := h.PhotoRepo.AssignTags(photo.ID, tagIDs); err != nil {
			writeRepoError(w, err, "assigning tags")
			return
		}
		if _, err := h.TagRepo.DeleteOrphans(); err != nil {
			log.Printf("Error collecting orphaned tags: %v", err)
		}
	}

	if err := h.assignAlbums(photo.ID, req.AlbumUUIDs); err != nil {
		writeRepoError(w, err, "assigning albums")
		return
	}

	if _, err := h.Publisher.RecordPhotoMutation(photo); err != nil {
		writeRepoError(w, err, "recomputing publish state")
		return
	}

	updated, err := h.PhotoRepo.GetByID(photo.ID)
	if err != nil {
		writeRepoError(w, err, "reloading photo")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// assignAlbums resolves the requested album UUIDs and replaces the
// photo's memberships. A nil slice means the request left albums alone.
func (h *AdminPhotoHandler) assignAlbums(photoID uint, albumUUIDs *[]string) error {
	if albumUUIDs == nil {
		return nil
	}
	albumIDs := make([]uint, 0, len(*albumUUIDs))
	for _, id := range *albumUUIDs {
		album, err := h.AlbumRepo.GetByPublicID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewValidationError("albums", "album %s does not exist", id)
			}
			return err
		}
		albumIDs = append(albumIDs, album.ID)
	}
	return h.PhotoRepo.AssignAlbums(photoID, albumIDs)
}

// Delete removes the photo row, its rendition records, and queues the
// removal of every file it owned. The unpublish signal fires first when
// the photo was publicly visible.
func (h *AdminPhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	photo, err := h.PhotoRepo.GetByPublicID(chi.URLParam(r, "photoUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching photo for delete")
		return
	}

	h.Publisher.NotifyDeleted(photo)

	paths, err := h.PSRepo.DeleteByPhoto(photo.ID)
	if err != nil {
		writeRepoError(w, err, "removing rendition records")
		return
	}
	paths = append(paths, photo.RawImagePath)

	if err := h.PhotoRepo.Delete(photo.ID); err != nil {
		writeRepoError(w, err, "deleting photo")
		return
	}
	if _, err := h.TagRepo.DeleteOrphans(); err != nil {
		log.Printf("Error collecting orphaned tags: %v", err)
	}

	h.Tasks.QueueTask(workers.Task{Type: workers.TaskDeleteFiles, Paths: paths})
	w.WriteHeader(http.StatusNoContent)
}
