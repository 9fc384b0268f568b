package mistakes

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/exam-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	query := r.URL.Query()
	var resolved *bool
	if v := query.Get("resolved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "resolved must be true or false"})
			return
		}
		resolved = &b
	}

	resp, err := h.service.List(r.Context(), userID,
		resolved, intQueryParam(query, "page", 1), intQueryParam(query, "page_size", 20))
	if err != nil {
		log.Printf("[mistakes] list failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list mistakes"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Practice(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	mistakeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid mistake ID"})
		return
	}

	var req models.PracticeMistakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Practice(r.Context(), userID, mistakeID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Mistake not found"})
			return
		}
		log.Printf("[mistakes] practice failed for mistake %d: %v", mistakeID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record practice attempt"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Retry(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	mistakeID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid mistake ID"})
		return
	}

	var req models.RetryMistakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Retry(r.Context(), userID, mistakeID, req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Mistake not found"})
			return
		}
		log.Printf("[mistakes] retry failed for mistake %d: %v", mistakeID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to record retry"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func intQueryParam(query url.Values, key string, fallback int) int {
	if v := query.Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
