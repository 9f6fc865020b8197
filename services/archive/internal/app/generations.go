package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"brickpress/internal/util"
	"brickpress/pkg/domain"
	"brickpress/pkg/storage"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

// SaveGenerationInput is the body of a save-generation call.
type SaveGenerationInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	StorageID   string `json:"storageId"`
	UserID      string `json:"userId,omitempty"`
}

// SaveGeneration inserts a record for an uploaded blob. An explicit userId
// wins; otherwise the caller's session owner is used.
func (a *App) SaveGeneration(ctx context.Context, in SaveGenerationInput, caller domain.Owner) (domain.Generation, error) {
	storageID := strings.TrimSpace(in.StorageID)
	if storageID == "" {
		return domain.Generation{}, ErrStorageIDRequired
	}
	if _, err := uuid.Parse(storageID); err != nil {
		return domain.Generation{}, ErrUnknownStorageID
	}
	exists, err := a.blobs.Exists(ctx, storage.GenerationKey(storageID))
	if err != nil {
		return domain.Generation{}, fmt.Errorf("check blob: %w", err)
	}
	if !exists {
		return domain.Generation{}, ErrUnknownStorageID
	}

	owner := caller
	if explicit := domain.Authenticated(in.UserID); !explicit.IsAnonymous() {
		owner = explicit
	}
	ownerID, _ := owner.ID()

	gen := domain.Generation{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Theme:       in.Theme,
		StorageID:   storageID,
		OwnerID:     ownerID,
		CreatedAt:   a.now(),
	}
	if err := a.store.CreateGeneration(ctx, gen); err != nil {
		return domain.Generation{}, fmt.Errorf("insert generation: %w", err)
	}
	util.LoggerFromContext(ctx).Info("generation saved", "generation_id", gen.ID, "owner", owner.String())
	return gen, nil
}

// ClampLimit applies the gallery default and ceiling.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRecentLimit
	case limit > MaxRecentLimit:
		return MaxRecentLimit
	default:
		return limit
	}
}

// RecentGenerations lists the caller's newest records with fresh image URLs.
// Anonymous callers get an empty list. A record whose URL cannot be signed is
// returned without imageUrl.
func (a *App) RecentGenerations(ctx context.Context, caller domain.Owner, limit int) ([]domain.Generation, error) {
	ownerID, ok := caller.ID()
	if !ok {
		return []domain.Generation{}, nil
	}
	gens, err := a.store.ListGenerationsByOwner(ctx, ownerID, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}

	logger := util.LoggerFromContext(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)
	for i := range gens {
		g.Go(func() error {
			url, err := a.blobs.PresignGet(gctx, storage.GenerationKey(gens[i].StorageID), a.imageURLTTL)
			if err != nil {
				logger.Warn("presign gallery image failed", "generation_id", gens[i].ID, "err", err)
				return nil
			}
			gens[i].ImageURL = url
			return nil
		})
	}
	_ = g.Wait()
	return gens, nil
}

// OwnerFromToken resolves a bearer token to an owner. Any failure is anonymous.
func (a *App) OwnerFromToken(ctx context.Context, token string) domain.Owner {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Anonymous()
	}
	sess, err := a.sessions.GetSession(token)
	if err != nil {
		util.LoggerFromContext(ctx).Debug("session lookup failed", "err", err)
		return domain.Anonymous()
	}
	return domain.Authenticated(sess.UserID)
}

