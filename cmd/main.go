package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voice-relay/internal/config"
	"github.com/Vovarama1992/voice-relay/internal/delivery"
	ws "github.com/Vovarama1992/voice-relay/internal/delivery/ws"
	"github.com/Vovarama1992/voice-relay/internal/domain"
	"github.com/Vovarama1992/voice-relay/internal/domain/stations"
	"github.com/Vovarama1992/voice-relay/internal/infra"
	"github.com/Vovarama1992/voice-relay/internal/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	defer zcore.Sync()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	cfg, err := config.Load()
	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "invalid configuration",
			Error:   err,
		})
		os.Exit(1)
	}
	if !cfg.SpeechConfigured() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "speech key or region not set; token and recognition requests will fail",
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// POSTGRES (optional)
	var journal ports.UploadJournal
	if cfg.JournalEnabled() {
		pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			panic("cannot connect pgxpool: " + err.Error())
		}
		defer pool.Close()

		if err := infra.EnsureUploadJournalSchema(ctx, pool); err != nil {
			panic("upload journal schema: " + err.Error())
		}
		journal = infra.NewPostgresUploadJournal(pool)
	}

	// ENGINES
	converter := infra.NewFFmpegConverter(cfg.FFmpegPath, zl)
	speech := infra.NewAzureSpeech(cfg.STTEndpoint, infra.NewAzureTranslator(cfg.TranslatorEndpoint))
	tokens := domain.NewTokenService(cfg, infra.NewAzureTokenClient(cfg.TokenEndpoint))

	// STATIONS
	s1, err := stations.NewS1StoreUpload(cfg.UploadDir, zl)
	if err != nil {
		panic(err.Error())
	}
	s2 := stations.NewS2WebMtoWAV(converter, cfg.TranscodeTimeout, zl)
	s3 := stations.NewS3Recognize(speech, cfg.RecognizeTimeout, zl)

	// VOICE SERVICE (оркестратор)
	voice := domain.NewVoiceService(cfg, journal, s1, s2, s3, zl)
	sweeper := domain.NewSweeper(cfg.UploadDir, cfg.UploadTTL, cfg.SweepInterval, zl)

	// WS HUB
	hub := ws.NewHub(zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.CORSOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	delivery.RegisterRoutes(r,
		delivery.NewTokenHandler(tokens, zl),
		delivery.NewVoiceHandler(voice, cfg.MaxUploadBytes, zl),
		delivery.NewUploadHandler(journal, zl),
	)

	r.Get("/ws", ws.WSHandler(hub, ws.NewUpgrader(cfg.CORSOrigin), zl))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// BROADCAST LISTENER
	g.Go(func() error { return ws.Broadcast(gctx, hub, voice.Events(), zl) })

	g.Go(func() error { return sweeper.Run(gctx) })

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "server started",
			Fields:  map[string]any{"port": cfg.Port, "journal": cfg.JournalEnabled()},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}
