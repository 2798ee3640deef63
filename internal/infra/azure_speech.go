package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/Vovarama1992/voice-relay/internal/audio"
	"github.com/Vovarama1992/voice-relay/internal/models"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/Vovarama1992/voice-relay/internal/preview"
)

// AzureSpeech talks to the Speech service short-audio REST endpoint.
// Translation is recognition in the source locale followed by the
// Translator API, keyed with the same multi-service subscription.
type AzureSpeech struct {
	sttEndpoint string // %s = region
	translator  *AzureTranslator
	client      *http.Client
}

func NewAzureSpeech(sttEndpoint string, translator *AzureTranslator) *AzureSpeech {
	return &AzureSpeech{
		sttEndpoint: sttEndpoint,
		translator:  translator,
		client:      &http.Client{},
	}
}

var _ ports.SpeechEngine = (*AzureSpeech)(nil)

type sttResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
}

func (s *AzureSpeech) NewSpeechRecognizer(cfg models.SessionConfig, wav []byte) (ports.Recognizer, error) {
	return s.newRecognizer(cfg, wav, false)
}

func (s *AzureSpeech) NewTranslationRecognizer(cfg models.SessionConfig, wav []byte) (ports.Recognizer, error) {
	if len(cfg.TargetLanguages) == 0 {
		return nil, errors.New("azure speech: translation needs a target language")
	}
	if s.translator == nil {
		return nil, errors.New("azure speech: no translator configured")
	}
	return s.newRecognizer(cfg, wav, true)
}

func (s *AzureSpeech) newRecognizer(cfg models.SessionConfig, wav []byte, translate bool) (*azureRecognizer, error) {
	if cfg.SubscriptionKey == "" || cfg.Region == "" || cfg.SourceLanguage == "" {
		return nil, errors.New("azure speech: key, region and source language are required")
	}

	h, err := audio.ReadHeader(bytes.NewReader(wav))
	if err != nil {
		return nil, fmt.Errorf("azure speech: audio input: %w", err)
	}
	if !h.LinearPCM() {
		return nil, fmt.Errorf("azure speech: audio input is not linear PCM (format=%d)", h.AudioFormat)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &azureRecognizer{
		engine:    s,
		cfg:       cfg,
		wav:       wav,
		header:    h,
		translate: translate,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

type azureRecognizer struct {
	engine    *AzureSpeech
	cfg       models.SessionConfig
	wav       []byte
	header    audio.Header
	translate bool

	ctx    context.Context // canceled by Close
	cancel context.CancelFunc

	used      sync.Once
	closeOnce sync.Once
}

func (r *azureRecognizer) RecognizeOnce(ctx context.Context) <-chan models.RecognitionResult {
	out := make(chan models.RecognitionResult, 1)

	first := false
	r.used.Do(func() { first = true })
	if !first {
		out <- models.RecognitionResult{Reason: models.ReasonCanceled, ErrorDetails: "recognizer already used"}
		close(out)
		return out
	}

	go func() {
		defer close(out)

		rctx, stop := context.WithCancel(ctx)
		defer stop()
		unhook := context.AfterFunc(r.ctx, stop)
		defer unhook()

		out <- r.run(rctx)
	}()

	return out
}

func (r *azureRecognizer) Close() error {
	r.closeOnce.Do(r.cancel)
	return nil
}

func (r *azureRecognizer) run(ctx context.Context) models.RecognitionResult {
	res := r.recognize(ctx)
	if !r.translate || res.Reason != models.ReasonRecognizedSpeech {
		return res
	}

	translations := make(map[string]string, len(r.cfg.TargetLanguages))
	for _, to := range r.cfg.TargetLanguages {
		text, err := r.engine.translator.Translate(ctx, r.cfg.SubscriptionKey, r.cfg.Region, res.Text, r.cfg.SourceLanguage, to)
		if err != nil {
			return models.RecognitionResult{
				Reason:       models.ReasonCanceled,
				Text:         res.Text,
				ErrorDetails: err.Error(),
			}
		}
		translations[to] = text
	}

	return models.RecognitionResult{
		Reason:       models.ReasonTranslatedSpeech,
		Text:         res.Text,
		Translations: translations,
	}
}

func (r *azureRecognizer) recognize(ctx context.Context) models.RecognitionResult {
	canceled := func(format string, args ...any) models.RecognitionResult {
		return models.RecognitionResult{Reason: models.ReasonCanceled, ErrorDetails: fmt.Sprintf(format, args...)}
	}

	q := url.Values{}
	q.Set("language", r.cfg.SourceLanguage)
	q.Set("format", "simple")
	endpoint := fmt.Sprintf(r.engine.sttEndpoint, r.cfg.Region) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(r.wav))
	if err != nil {
		return canceled("build request: %v", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", r.cfg.SubscriptionKey)
	req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", r.header.SampleRate))
	req.Header.Set("Accept", "application/json")

	resp, err := r.engine.client.Do(req)
	if err != nil {
		return canceled("stt request: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return canceled("stt http %d: %s", resp.StatusCode, preview.Text(string(raw), 200))
	}

	var parsed sttResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return canceled("stt decode: %v", err)
	}

	switch parsed.RecognitionStatus {
	case "Success":
		text := strings.TrimSpace(parsed.DisplayText)
		if text == "" {
			return models.RecognitionResult{Reason: models.ReasonNoMatch}
		}
		return models.RecognitionResult{Reason: models.ReasonRecognizedSpeech, Text: text}
	case "NoMatch", "InitialSilenceTimeout", "BabbleTimeout":
		return models.RecognitionResult{Reason: models.ReasonNoMatch, ErrorDetails: parsed.RecognitionStatus}
	default:
		return canceled("recognition status %q", parsed.RecognitionStatus)
	}
}
