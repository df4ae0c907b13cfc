package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
)

// AdminAlbumHandler owns the album write surface.
type AdminAlbumHandler struct {
	AlbumRepo repository.AlbumRepositoryInterface
}

type albumRequest struct {
	Title            *string `json:"title"`
	Slug             *string `json:"slug"`
	ShortDescription *string `json:"short_description"`
	Description      *string `json:"description"`
	SortMethod       *string `json:"sort_method"`
	SortDescending   *bool   `json:"sort_descending"`
	ParentUUID       *string `json:"parent_uuid"`
	ClearParent      bool    `json:"clear_parent"`
}

func (h *AdminAlbumHandler) resolveParent(uuid *string) (*uint, error) {
	if uuid == nil || *uuid == "" {
		return nil, nil
	}
	parent, err := h.AlbumRepo.GetByPublicID(*uuid)
	if err != nil {
		return nil, models.NewValidationError("parent", "parent album %s does not exist", *uuid)
	}
	return &parent.ID, nil
}

func (h *AdminAlbumHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	parentID, err := h.resolveParent(req.ParentUUID)
	if err != nil {
		writeRepoError(w, err, "resolving parent album")
		return
	}

	album := &models.Album{Title: strings.TrimSpace(*req.Title), ParentID: parentID}
	if req.Slug != nil {
		album.Slug = *req.Slug
	}
	if req.ShortDescription != nil {
		album.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		album.Description = *req.Description
	}
	if req.SortMethod != nil {
		album.SortMethod = *req.SortMethod
	}
	if req.SortDescending != nil {
		album.SortDescending = *req.SortDescending
	}

	if err := h.AlbumRepo.Create(album); err != nil {
		writeRepoError(w, err, "creating album")
		return
	}
	writeJSON(w, http.StatusCreated, album)
}

func (h *AdminAlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	albums, err := h.AlbumRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing albums")
		return
	}
	writeJSON(w, http.StatusOK, albums)
}

// Get returns one album with its ordered photos (drafts included) and
// its raw membership rows for manual reordering clients.
func (h *AdminAlbumHandler) Get(w http.ResponseWriter, r *http.Request) {
	album, err := h.AlbumRepo.GetByPublicID(chi.URLParam(r, "albumUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching album")
		return
	}

	photos, err := h.AlbumRepo.GetOrderedPhotos(album, false)
	if err != nil {
		writeRepoError(w, err, "ordering album photos")
		return
	}
	memberships, err := h.AlbumRepo.ListMemberships(album.ID)
	if err != nil {
		writeRepoError(w, err, "listing memberships")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"album":       album,
		"photos":      photos,
		"memberships": memberships,
	})
}

func (h *AdminAlbumHandler) Update(w http.ResponseWriter, r *http.Request) {
	album, err := h.AlbumRepo.GetByPublicID(chi.URLParam(r, "albumUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching album for update")
		return
	}

	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.Title != nil {
		album.Title = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		album.Slug = *req.Slug
	}
	if req.ShortDescription != nil {
		album.ShortDescription = *req.ShortDescription
	}
	if req.Description != nil {
		album.Description = *req.Description
	}
	if req.SortMethod != nil {
		album.SortMethod = *req.SortMethod
	}
	if req.SortDescending != nil {
		album.SortDescending = *req.SortDescending
	}
	if req.ClearParent {
		album.ParentID = nil
	} else if req.ParentUUID != nil {
		parentID, err := h.resolveParent(req.ParentUUID)
		if err != nil {
			writeRepoError(w, err, "resolving parent album")
			return
		}
		album.ParentID = parentID
	}

	if err := h.AlbumRepo.Update(album); err != nil {
		writeRepoError(w, err, "updating album")
		return
	}
	writeJSON(w, http.StatusOK, album)
}

func (h *AdminAlbumHandler) Delete(w http.ResponseWriter, r *http.Request) {
	album, err := h.AlbumRepo.GetByPublicID(chi.URLParam(r, "albumUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching album for delete")
		return
	}
	if err := h.AlbumRepo.Delete(album.ID); err != nil {
		writeRepoError(w, err, "deleting album")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
