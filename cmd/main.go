package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/config"
	"github.com/Vovarama1992/voicerelay/internal/delivery"
	"github.com/Vovarama1992/voicerelay/internal/domain"
	"github.com/Vovarama1992/voicerelay/internal/infra"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {

	// CONFIG
	cfg, err := config.Load()
	if err != nil {
		panic("config: " + err.Error())
	}

	// LOGGER
	zl := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// STORE
	store, err := openStore(ctx, cfg)
	if err != nil {
		panic("store: " + err.Error())
	}
	defer store.Close()

	content, err := infra.NewContentDir(cfg.UploadDir)
	if err != nil {
		panic("content dir: " + err.Error())
	}

	// EXTERNAL CLIENTS
	if cfg.ElevenLabsAPIKey == "" {
		zl.Log(logger.LogEntry{
			Level:   "warn",
			Message: "ELEVENLABS_API_KEY is not set; replies will be stored without audio",
		})
	}
	tts := infra.NewElevenLabsTTS(cfg.ElevenLabsAPIKey, cfg.ElevenLabsBaseURL, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModelID)
	webhook := infra.NewHTTPWebhookClient(cfg.WebhookURL, cfg.WebhookTimeout)

	// SERVICES
	messages := domain.NewMessageService(store, content, zl)
	speech := domain.NewSpeechService(tts, content, zl)
	forwarder := domain.NewForwarder(webhook, messages, speech, zl)
	dispatcher := domain.NewDispatcher(cfg.ForwardMaxConcurrency, zl)
	uploads := domain.NewUploadService(content, messages, forwarder, dispatcher, zl)
	replies := domain.NewReplyService(messages, speech, zl)

	// ROUTER
	r := delivery.NewRouter(delivery.Handlers{
		Messages: delivery.NewMessageHandler(messages, zl),
		Uploads:  delivery.NewUploadHandler(uploads, cfg.MaxUploadBytes, zl),
		Webhook:  delivery.NewWebhookHandler(replies, zl),
		Static:   delivery.NewStaticHandler(content),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "server started",
			Fields: map[string]any{
				"port":       cfg.Port,
				"db":         cfg.DBDriver,
				"uploads":    cfg.UploadDir,
				"webhook":    cfg.WebhookURL,
				"maxForward": cfg.ForwardMaxConcurrency,
			},
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		// in-flight forwards get what is left of the timeout; stragglers are abandoned
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			zl.Log(logger.LogEntry{
				Level:   "warn",
				Message: "exiting with forwards still in flight",
				Error:   err,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
		os.Exit(1)
	}

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server stopped",
	})
}

func newLogger(level string) *logger.ZapLogger {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zcore, err := zcfg.Build()
	if err != nil {
		zcore, _ = zap.NewProduction()
	}
	return logger.NewZapLogger(zcore.Sugar())
}

func openStore(ctx context.Context, cfg *config.Config) (ports.MessageStore, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		pool, err := infra.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return infra.NewPostgresMessageStore(pool), nil
	case config.DriverMemory:
		return infra.NewMemoryMessageStore(), nil
	default:
		return infra.OpenSQLiteMessageStore(ctx, cfg.DBPath)
	}
}
