package concepts

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/exam-prep/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value("user_id").(int64)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	stats, err := h.store.ListStats(r.Context(), userID)
	if err != nil {
		log.Printf("[concepts] list stats failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load concept stats"})
		return
	}
	if stats == nil {
		stats = []models.ConceptStat{}
	}
	writeJSON(w, http.StatusOK, models.ConceptStatsResponse{Stats: stats, Total: len(stats)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
