// Package config builds the process-wide configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Values shipped in the sample .env; they mean "not configured yet".
const (
	PlaceholderSpeechKey    = "paste-your-speech-key-here"
	PlaceholderSpeechRegion = "paste-your-speech-region-here"
)

type Config struct {
	Port       string
	CORSOrigin string

	SpeechKey    string
	SpeechRegion string

	UploadDir      string
	MaxUploadBytes int64
	FFmpegPath     string

	RecognitionLanguage string
	TranslateFrom       string
	TranslateTo         string

	TranscodeTimeout time.Duration
	RecognizeTimeout time.Duration

	KeepUploads   bool
	UploadTTL     time.Duration
	SweepInterval time.Duration

	// empty disables the upload journal
	DatabaseURL string

	TokenEndpoint      string // fmt template, %s = region
	STTEndpoint        string // fmt template, %s = region
	TranslatorEndpoint string
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup; Load passes os.Getenv.
func FromEnv(getenv func(string) string) (*Config, error) {
	env := func(k, def string) string {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               env("PORT", "5001"),
		CORSOrigin:         env("CORS_ORIGIN", "http://localhost:3000"),
		SpeechKey:          strings.TrimSpace(getenv("AZURE_SPEECH_KEY")),
		SpeechRegion:       strings.TrimSpace(getenv("AZURE_REGION")),
		UploadDir:          env("UPLOAD_DIR", "uploads"),
		FFmpegPath:         env("FFMPEG_PATH", "ffmpeg"),
		DatabaseURL:        strings.TrimSpace(getenv("DATABASE_URL")),
		TokenEndpoint:      env("AZURE_TOKEN_ENDPOINT", "https://%s.api.cognitive.microsoft.com/sts/v1.0/issueToken"),
		STTEndpoint:        env("AZURE_STT_ENDPOINT", "https://%s.stt.speech.microsoft.com/speech/recognition/conversation/cognitiveservices/v1"),
		TranslatorEndpoint: env("AZURE_TRANSLATOR_ENDPOINT", "https://api.cognitive.microsofttranslator.com"),
	}

	var errs []error

	n, err := strconv.ParseInt(env("MAX_UPLOAD_BYTES", "26214400"), 10, 64)
	if err != nil || n <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES: must be a positive integer"))
	}
	cfg.MaxUploadBytes = n

	cfg.KeepUploads, err = strconv.ParseBool(env("KEEP_UPLOADS", "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("KEEP_UPLOADS: %w", err))
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"TRANSCODE_TIMEOUT", "60s", &cfg.TranscodeTimeout},
		{"RECOGNIZE_TIMEOUT", "30s", &cfg.RecognizeTimeout},
		{"UPLOAD_TTL", "1h", &cfg.UploadTTL},
		{"SWEEP_INTERVAL", "10m", &cfg.SweepInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(env(d.key, d.def))
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be a positive duration", d.key))
			continue
		}
		*d.dst = v
	}

	// the sweeper must never reach files of a pipeline still in flight
	if busy := cfg.TranscodeTimeout + cfg.RecognizeTimeout; cfg.UploadTTL > 0 && busy > 0 && cfg.UploadTTL <= busy {
		errs = append(errs, fmt.Errorf("UPLOAD_TTL: must be longer than TRANSCODE_TIMEOUT + RECOGNIZE_TIMEOUT (%s)", busy))
	}

	langs := []struct {
		key string
		def string
		dst *string
	}{
		{"SPEECH_LANGUAGE", "en-US", &cfg.RecognitionLanguage},
		{"TRANSLATE_FROM", "zh-CN", &cfg.TranslateFrom},
		{"TRANSLATE_TO", "en", &cfg.TranslateTo},
	}
	for _, l := range langs {
		tag, err := language.Parse(env(l.key, l.def))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.key, err))
			continue
		}
		*l.dst = tag.String()
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SpeechConfigured is false while the key or region is unset or still the sample placeholder.
func (c *Config) SpeechConfigured() bool {
	if c.SpeechKey == "" || c.SpeechRegion == "" {
		return false
	}
	return c.SpeechKey != PlaceholderSpeechKey && c.SpeechRegion != PlaceholderSpeechRegion
}

// JournalEnabled reports whether uploads are journaled in Postgres.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}
