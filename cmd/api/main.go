package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/batikin/tailor-backend/internal/ai"
	"github.com/batikin/tailor-backend/internal/config"
	"github.com/batikin/tailor-backend/internal/db"
	"github.com/batikin/tailor-backend/internal/logging"
	appmw "github.com/batikin/tailor-backend/internal/middleware"
	"github.com/batikin/tailor-backend/internal/realtime"
	"github.com/batikin/tailor-backend/internal/server"
	"github.com/batikin/tailor-backend/internal/storage"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// set with -ldflags at build time
var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Logger:         logger,
		Now:            time.Now,
		TranslateRPS:   cfg.TranslateRPS,
		TranslateBurst: cfg.TranslateBurst,
		GitSHA:         gitSHA,
		BuildTime:      buildTime,
	}

	switch cfg.AuthMode {
	case config.AuthModeHeader:
		logger.Warn().Msg("AUTH_MODE=header: trusting X-User-ID, do not use in production")
		opts.Auth = appmw.NewHeaderAuthMiddleware()
	default:
		client, err := appmw.NewFirebaseVerifier(ctx, cfg.FirebaseProjectID, cfg.CredentialsFile)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init firebase auth")
		}
		opts.Auth = appmw.NewAuthMiddleware(client)
	}

	hub := realtime.NewHub(logger)
	go hub.Run(ctx)
	opts.Hub = hub
	if cfg.RedisURL != "" {
		broker, err := realtime.NewRedisBroker(ctx, cfg.RedisURL, hub, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable; realtime feed is local to this instance")
		} else {
			defer broker.Close()
			go broker.Run(ctx)
			opts.Publisher = broker
		}
	}

	if translator, err := ai.NewGeminiTranslator(ctx, cfg.TranslateModel); err != nil {
		logger.Warn().Err(err).Msg("translator disabled")
	} else {
		opts.Translator = translator
	}

	if cfg.StorageBucket != "" {
		uploader, err := storage.NewGCSUploader(ctx, cfg.StorageBucket, cfg.CredentialsFile)
		if err != nil {
			logger.Warn().Err(err).Msg("design uploads disabled")
		} else {
			defer uploader.Close()
			opts.Uploader = uploader
		}
	}

	srv, err := server.New(nil, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("server init error")
	}
	addr := ":" + cfg.Port

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("git_sha", gitSHA).Msg("starting server")
		errCh <- srv.Start(addr)
	}()

	// connect after listening so the platform health check passes during cold starts
	go func() {
		conn, err := db.Connect(cfg)
		if err != nil {
			logger.Error().Err(err).Msg("db connect error")
			return
		}
		if err := db.AutoMigrate(conn); err != nil {
			logger.Error().Err(err).Msg("auto migrate error")
			return
		}
		srv.SetDB(conn)
		logger.Info().Str("driver", cfg.DBDriver).Msg("database ready")
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}
