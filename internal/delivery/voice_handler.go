package delivery

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/domain"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
)

// multipart parts above this spill to temp files
const formMemory = 8 << 20

type VoiceHandler struct {
	voice    ports.VoiceProcessor
	maxBytes int64
	log      *logger.ZapLogger
}

func NewVoiceHandler(voice ports.VoiceProcessor, maxBytes int64, log *logger.ZapLogger) *VoiceHandler {
	return &VoiceHandler{
		voice:    voice,
		maxBytes: maxBytes,
		log:      log,
	}
}

// POST /api/Voice/upload
func (h *VoiceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeRecognize)
}

// POST /api/Voice/translate
func (h *VoiceHandler) Translate(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, models.ModeTranslate)
}

func (h *VoiceHandler) handle(w http.ResponseWriter, r *http.Request, mode models.Mode) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	req := ports.VoiceRequest{
		Mode:   mode,
		RoomID: r.URL.Query().Get("roomID"),
	}

	file, err := h.formFile(r)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		h.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "upload rejected: body too large",
			Fields:  map[string]any{"mode": string(mode), "limit": tooLarge.Limit},
		})
		http.Error(w, "Uploaded file is too large.", http.StatusRequestEntityTooLarge)
		return
	case err == nil:
		defer file.Close()
		req.Audio = file
		if req.RoomID == "" {
			req.RoomID = r.FormValue("roomID")
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	text, err := h.voice.Process(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"DisplayText": text,
	})
}

// formFile returns the "file" part; any other error means the client sent no usable file.
func (h *VoiceHandler) formFile(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(formMemory); err != nil {
		return nil, err
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	return f, nil
}

// writeError renders a domain error; recognition failures are the only JSON error body.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if !errors.As(err, &de) {
		http.Error(w, domain.MsgProcessingAudio, http.StatusInternalServerError)
		return
	}

	if de.Kind == domain.KindRecognition {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(de.HTTPStatus())
		_ = json.NewEncoder(w).Encode(map[string]string{"error": de.Message})
		return
	}
	http.Error(w, de.Message, de.HTTPStatus())
}

