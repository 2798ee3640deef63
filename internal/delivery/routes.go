package delivery

import (
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hToken *TokenHandler, hVoice *VoiceHandler, hUpload *UploadHandler) {
	r.Route("/api/Voice", func(r chi.Router) {
		// browser-side SDK token
		r.Get("/get-speech-token", hToken.GetSpeechToken)

		// recorded audio
		r.Post("/upload", hVoice.Upload)
		r.Post("/translate", hVoice.Translate)

		// journal lookup
		r.Get("/uploads/{id}", hUpload.GetUpload)
	})
}
