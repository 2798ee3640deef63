package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type UploadHandler struct {
	journal ports.UploadJournal // nil when disabled
	log     *logger.ZapLogger
}

func NewUploadHandler(journal ports.UploadJournal, log *logger.ZapLogger) *UploadHandler {
	return &UploadHandler{
		journal: journal,
		log:     log,
	}
}

// GET /api/Voice/uploads/{id}
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if h.journal == nil {
		http.Error(w, "upload not found", http.StatusNotFound)
		return
	}

	rec, err := h.journal.GetUpload(r.Context(), id)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "upload lookup failed",
			Fields:  map[string]any{"uploadID": id.String()},
			Error:   err,
		})
		http.Error(w, "failed get upload", http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "upload not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rec)
}
