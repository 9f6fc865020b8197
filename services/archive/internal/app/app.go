package app

import (
	"errors"
	"time"

	"brickpress/pkg/store"
	"brickpress/pkg/storage"
)

const (
	defaultImageURLTTL  = 15 * time.Minute
	defaultUploadURLTTL = 15 * time.Minute
	presignConcurrency  = 8
)

// Config holds runtime dependencies for the archive core.
type Config struct {
	Store        store.Store
	Blobs        storage.ObjectStore
	Sessions     store.SessionStore
	ImageURLTTL  time.Duration
	UploadURLTTL time.Duration
}

// App is the archive's document store, blob store and identity provider.
type App struct {
	store        store.Store
	blobs        storage.ObjectStore
	sessions     store.SessionStore
	imageURLTTL  time.Duration
	uploadURLTTL time.Duration
	now          func() time.Time
}

// New constructs the application from already-initialised backends.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	if cfg.Blobs == nil {
		return nil, errors.New("object store required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store required")
	}
	if cfg.ImageURLTTL <= 0 {
		cfg.ImageURLTTL = defaultImageURLTTL
	}
	if cfg.UploadURLTTL <= 0 {
		cfg.UploadURLTTL = defaultUploadURLTTL
	}
	return &App{
		store:        cfg.Store,
		blobs:        cfg.Blobs,
		sessions:     cfg.Sessions,
		imageURLTTL:  cfg.ImageURLTTL,
		uploadURLTTL: cfg.UploadURLTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// JWKS publishes verification keys when the session store supports it.
func (a *App) JWKS() []store.JWK {
	if p, ok := a.sessions.(store.JWKSProvider); ok {
		return p.JWKS()
	}
	return nil
}
