package practice

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

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	cfg, err := h.service.GetConfig(r.Context(), userID)
	if err != nil {
		log.Printf("[practice] get config failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load config"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var cfg models.PracticeConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateConfig(r.Context(), userID, cfg); err != nil {
		if errors.Is(err, ErrConfigInvalid) {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
			return
		}
		log.Printf("[practice] update config failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save config"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) GenerateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.GenerateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Generate(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrConfigInvalid):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrNoQuestions):
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		default:
			log.Printf("[practice] generate failed for user %d: %v", userID, err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate session"})
		}
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	var req models.SubmitSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
		case errors.Is(err, ErrAlreadyCompleted):
			writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
		case errors.Is(err, ErrInvalidAnswer):
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		default:
			log.Printf("[practice] submit failed for session %d: %v", sessionID, err)
			writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to submit session"})
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	query := r.URL.Query()
	page := intQueryParam(query, "page", 1)
	pageSize := intQueryParam(query, "page_size", 20)

	resp, err := h.service.ListSessions(r.Context(), userID, page, pageSize)
	if err != nil {
		log.Printf("[practice] list sessions failed for user %d: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list sessions"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	sessionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid session ID"})
		return
	}

	resp, err := h.service.SessionDetail(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
			return
		}
		log.Printf("[practice] get session %d failed: %v", sessionID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load session"})
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
