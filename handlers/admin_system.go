package handlers

import (
	"net/http"

	"github.com/camden-git/photocmsbackend/workers"
)

// AdminSystemHandler exposes the background sweeps for manual runs.
type AdminSystemHandler struct {
	Tasks *workers.TaskProcessor
}

// RunConsistencySweep triggers a reconciliation pass and reports how
// many issues it corrected.
func (h *AdminSystemHandler) RunConsistencySweep(w http.ResponseWriter, r *http.Request) {
	issues, err := h.Tasks.RunConsistencySweep()
	if err != nil {
		writeRepoError(w, err, "running consistency sweep")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"issues": issues})
}

// RunPublishSweep triggers a publish recompute pass and reports how many
// photos transitioned.
func (h *AdminSystemHandler) RunPublishSweep(w http.ResponseWriter, r *http.Request) {
	changed, err := h.Tasks.RunPublishSweep()
	if err != nil {
		writeRepoError(w, err, "running publish sweep")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"transitioned": changed})
}
