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

	"brickpress/internal/util"
	"brickpress/pkg/storage"
	"brickpress/pkg/store"
	"brickpress/services/archive/internal/app"
	"brickpress/services/archive/internal/config"
	"brickpress/services/archive/internal/server"
)

const defaultSessionTTL = 7 * 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var revoker store.TokenRevoker = store.NewMemoryTokenRevoker()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		revoker = store.NewRedisTokenRevoker(rdb)
	}

	docs, closeDocs, err := openStore(cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer closeDocs()

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open object store: %v", err)
	}

	sessions, err := openSessions(cfg, revoker)
	if err != nil {
		log.Fatalf("failed to init sessions: %v", err)
	}

	imageURLTTL, _ := config.ParseDuration("imageURLTTL", cfg.ImageURLTTL)
	uploadURLTTL, _ := config.ParseDuration("uploadURLTTL", cfg.UploadURLTTL)
	appCore, err := app.New(app.Config{
		Store:        docs,
		Blobs:        blobs,
		Sessions:     sessions,
		ImageURLTTL:  imageURLTTL,
		UploadURLTTL: uploadURLTTL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{App: appCore, MaxUploadBytes: cfg.MaxUploadBytes})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("archive server listening", "addr", addr, "database", cfg.DatabaseDriver, "blobs", cfg.BlobDriver)
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
		logger.Error("server error", "err", err)
	}
}

func openStore(cfg config.FileConfig) (store.Store, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		slog.Warn("using in-memory document store; records are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
	gs, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return gs, func() { _ = gs.Close() }, nil
}

func openBlobs(ctx context.Context, cfg config.FileConfig) (storage.ObjectStore, error) {
	if cfg.BlobDriver == config.DriverMemory {
		slog.Warn("using in-memory blob store; images are lost on restart")
		return storage.NewMemoryStore(""), nil
	}
	return storage.NewMinioStore(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
}

func openSessions(cfg config.FileConfig, revoker store.TokenRevoker) (*store.JWTSessionStore, error) {
	ttl, _ := config.ParseDuration("sessionTTL", cfg.SessionTTL)
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	leeway, _ := config.ParseDuration("jwtLeeway", cfg.JWTLeeway)
	opts := store.JWTOptions{Issuer: cfg.JWTIssuer, Audience: cfg.JWTAudience, Leeway: leeway}
	if strings.TrimSpace(cfg.JWTPrivateKeyPath) == "" {
		slog.Warn("no jwt private key configured; signing with an ephemeral key")
		return store.NewJWTRS256SessionStore(nil, cfg.JWTKeyID, ttl, revoker, opts)
	}
	return store.NewJWTRS256SessionStoreFromPEMWithOptions(
		cfg.JWTPrivateKeyPath,
		cfg.JWTPublicKeyPath,
		cfg.JWTKeyID,
		cfg.JWTVerifyPublicKeys,
		ttl,
		revoker,
		opts,
	)
}
