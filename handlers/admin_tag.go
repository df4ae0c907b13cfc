package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
)

// AdminTagHandler owns the tag write surface.
type AdminTagHandler struct {
	TagRepo repository.TagRepositoryInterface
}

type tagRequest struct {
	Name string `json:"name"`
}

func (h *AdminTagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tag := &models.Tag{Name: req.Name}
	if err := h.TagRepo.Create(tag); err != nil {
		writeRepoError(w, err, "creating tag")
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *AdminTagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.TagRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing tags")
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// Rename changes a tag's name. When the new name collides with another
// tag the two merge, and the response body is the surviving tag, which
// is not necessarily the one addressed by the URL. Clients must adopt
// the returned identity.
func (h *AdminTagHandler) Rename(w http.ResponseWriter, r *http.Request) {
	tag, err := h.TagRepo.GetByPublicID(chi.URLParam(r, "tagUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching tag for rename")
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	survivor, err := h.TagRepo.Rename(tag.ID, req.Name)
	if err != nil {
		writeRepoError(w, err, "renaming tag")
		return
	}
	writeJSON(w, http.StatusOK, survivor)
}

func (h *AdminTagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tag, err := h.TagRepo.GetByPublicID(chi.URLParam(r, "tagUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching tag for delete")
		return
	}
	if err := h.TagRepo.Delete(tag.ID); err != nil {
		writeRepoError(w, err, "deleting tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
