package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/camden-git/photocmsbackend/models"
	"github.com/camden-git/photocmsbackend/repository"
	"github.com/camden-git/photocmsbackend/workers"
)

// AdminSizeHandler owns the size registry write surface. Every change to
// a size's output geometry fans regeneration out across the library.
type AdminSizeHandler struct {
	SizeRepo repository.SizeRepositoryInterface
	PSRepo   repository.PhotoSizeRepositoryInterface
	Tasks    *workers.TaskProcessor
}

type sizeRequest struct {
	Slug         *string `json:"slug"`
	Comment      *string `json:"comment"`
	MaxDimension *int    `json:"max_dimension"`
	SquareCrop   *bool   `json:"square_crop"`
	Public       *bool   `json:"public"`
}

func (h *AdminSizeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	size := &models.Size{CanEdit: true, Public: true}
	if req.Slug != nil {
		size.Slug = *req.Slug
	}
	if req.Comment != nil {
		size.Comment = *req.Comment
	}
	if req.MaxDimension != nil {
		size.MaxDimension = *req.MaxDimension
	}
	if req.SquareCrop != nil {
		size.SquareCrop = *req.SquareCrop
	}
	if req.Public != nil {
		size.Public = *req.Public
	}

	if err := h.SizeRepo.Create(size); err != nil {
		writeRepoError(w, err, "creating size")
		return
	}

	h.Tasks.QueueTask(workers.Task{Type: workers.TaskGenerateForSize, SizeID: size.ID})
	writeJSON(w, http.StatusCreated, size)
}

func (h *AdminSizeHandler) List(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.SizeRepo.ListAll()
	if err != nil {
		writeRepoError(w, err, "listing sizes")
		return
	}
	writeJSON(w, http.StatusOK, sizes)
}

func (h *AdminSizeHandler) Get(w http.ResponseWriter, r *http.Request) {
	size, err := h.SizeRepo.GetByPublicID(chi.URLParam(r, "sizeUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching size")
		return
	}
	writeJSON(w, http.StatusOK, size)
}

// Update edits a size. When the output geometry changes, every existing
// rendition of the size is invalidated: records and files are dropped
// and regeneration is queued.
func (h *AdminSizeHandler) Update(w http.ResponseWriter, r *http.Request) {
	size, err := h.SizeRepo.GetByPublicID(chi.URLParam(r, "sizeUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching size for update")
		return
	}

	var req sizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	oldMaxDimension := size.MaxDimension
	oldSquareCrop := size.SquareCrop

	if req.Slug != nil {
		size.Slug = *req.Slug
	}
	if req.Comment != nil {
		size.Comment = *req.Comment
	}
	if req.MaxDimension != nil {
		size.MaxDimension = *req.MaxDimension
	}
	if req.SquareCrop != nil {
		size.SquareCrop = *req.SquareCrop
	}
	if req.Public != nil {
		size.Public = *req.Public
	}

	if err := h.SizeRepo.Update(size); err != nil {
		writeRepoError(w, err, "updating size")
		return
	}

	if size.MaxDimension != oldMaxDimension || size.SquareCrop != oldSquareCrop {
		paths, err := h.PSRepo.DeleteBySize(size.ID)
		if err != nil {
			writeRepoError(w, err, "invalidating renditions")
			return
		}
		if len(paths) > 0 {
			h.Tasks.QueueTask(workers.Task{Type: workers.TaskDeleteFiles, Paths: paths})
		}
		h.Tasks.QueueTask(workers.Task{Type: workers.TaskGenerateForSize, SizeID: size.ID})
	}

	writeJSON(w, http.StatusOK, size)
}

// Delete removes a size, its rendition records, and queues the files'
// removal. Builtin and locked sizes are refused by the repository.
func (h *AdminSizeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	size, err := h.SizeRepo.GetByPublicID(chi.URLParam(r, "sizeUUID"))
	if err != nil {
		writeRepoError(w, err, "fetching size for delete")
		return
	}

	if err := h.SizeRepo.Delete(size.ID); err != nil {
		writeRepoError(w, err, "deleting size")
		return
	}

	paths, err := h.PSRepo.DeleteBySize(size.ID)
	if err != nil {
		writeRepoError(w, err, "removing rendition records")
		return
	}
	if len(paths) > 0 {
		h.Tasks.QueueTask(workers.Task{Type: workers.TaskDeleteFiles, Paths: paths})
	}
	w.WriteHeader(http.StatusNoContent)
}
