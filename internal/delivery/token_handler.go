package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/ports"
)

type TokenHandler struct {
	tokens ports.TokenIssuer
	log    *logger.ZapLogger
}

func NewTokenHandler(tokens ports.TokenIssuer, log *logger.ZapLogger) *TokenHandler {
	return &TokenHandler{
		tokens: tokens,
		log:    log,
	}
}

// GET /api/Voice/get-speech-token
func (h *TokenHandler) GetSpeechToken(w http.ResponseWriter, r *http.Request) {
	token, region, err := h.tokens.IssueToken(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "speech token not issued",
			Error:   err,
		})
		writeError(w, err)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "speech token issued",
		Fields:  map[string]any{"region": region},
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"token":  token,
		"region": region,
	})
}
