package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"brickpress/internal/ratelimit"
	"brickpress/internal/usertoken"
	"brickpress/internal/util"
	"brickpress/pkg/ai"
	"brickpress/services/web/internal/app"
	"brickpress/services/web/internal/archiveclient"
	"brickpress/services/web/internal/config"
	"brickpress/services/web/internal/server"
)

const defaultGenerateLimit = 5

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	genTimeout, _ := config.ParseDuration("generationTimeout", cfg.GenerationTimeout)
	archiveTimeout, _ := config.ParseDuration("archiveTimeout", cfg.ArchiveTimeout)
	leeway, _ := config.ParseDuration("jwtLeeway", cfg.JWTLeeway)

	var generator ai.ImageGenerator
	if strings.TrimSpace(cfg.GoogleAPIKey) != "" {
		gemini, err := ai.NewGeminiImageGenerator(ctx, cfg.GoogleAPIKey, cfg.ImageModel, genTimeout)
		if err != nil {
			log.Fatalf("failed to init gemini client: %v", err)
		}
		generator = gemini
	} else {
		slog.Warn("GOOGLE_API_KEY not set; /api/generate will answer with a configuration error")
	}

	archive := archiveclient.NewClient(cfg.ArchiveURL, cfg.ArchiveSiteURL)
	appCore := app.New(app.Config{
		Generator:      generator,
		Archive:        archive,
		ArchiveTimeout: archiveTimeout,
	})

	verifier, err := usertoken.NewVerifier(usertoken.Config{
		JWKSURL:  cfg.ArchiveJWKSURL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		Leeway:   leeway,
	})
	if err != nil {
		log.Fatalf("failed to init token verifier: %v", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("invalid trustedProxyCidrs: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		limit := cfg.GenerateRateLimitPerMinute
		if limit <= 0 {
			limit = defaultGenerateLimit
		}
		limiter, err = ratelimit.NewFixedWindowLimiter(rdb, "brickpress:web:ratelimit:generate", limit, time.Minute)
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
	} else {
		slog.Warn("redisAddr not set; generation is not rate limited")
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		Archive:        archive,
		TokenVerifier:  verifier,
		GenerateLimit:  limiter,
		TrustedProxies: trusted,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:        addr,
		Handler:     httpServer.Router(),
		ReadTimeout: 30 * time.Second,
		// Image generation can take minutes.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("web server listening", "addr", addr, "site_url", cfg.SiteURL, "archive", cfg.ArchiveURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}
