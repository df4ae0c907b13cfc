package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"

	"github.com/camden-git/photocmsbackend/models"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("Error encoding JSON response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeRepoError maps repository failures onto HTTP statuses: validation
// errors become 400 with the message exposed, duplicate-row conflicts
// become 409, a missing record becomes a plain 404, everything else is
// logged and hidden behind a 500.
func writeRepoError(w http.ResponseWriter, err error, context string) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	var cerr *models.ConflictError
	if errors.As(err, &cerr) {
		writeError(w, http.StatusConflict, cerr.Error())
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	log.Printf("Error %s: %v", context, err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
