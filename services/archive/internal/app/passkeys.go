package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brickpress/pkg/domain"
	"brickpress/pkg/store"
)

// PasskeyInput is a credential produced by a completed WebAuthn registration.
type PasskeyInput struct {
	Name         string   `json:"name"`
	PublicKey    string   `json:"publicKey"`
	CredentialID string   `json:"credentialID"`
	Counter      int64    `json:"counter"`
	DeviceType   string   `json:"deviceType"`
	BackedUp     bool     `json:"backedUp"`
	Transports   []string `json:"transports"`
	AAGUID       string   `json:"aaguid"`
}

// RegisterPasskey stores a credential for user. Re-registering one of the
// user's own credentials refreshes it; another user's credential is a conflict.
func (a *App) RegisterPasskey(ctx context.Context, user domain.User, in PasskeyInput) (domain.Passkey, error) {
	in.PublicKey = strings.TrimSpace(in.PublicKey)
	in.CredentialID = strings.TrimSpace(in.CredentialID)
	if in.PublicKey == "" || in.CredentialID == "" {
		return domain.Passkey{}, ErrPasskeyInvalid
	}
	deviceType := strings.TrimSpace(in.DeviceType)
	if deviceType == "" {
		deviceType = "singleDevice"
	}
	pk := domain.Passkey{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		Name:         strings.TrimSpace(in.Name),
		PublicKey:    in.PublicKey,
		CredentialID: in.CredentialID,
		Counter:      in.Counter,
		DeviceType:   deviceType,
		BackedUp:     in.BackedUp,
		Transports:   in.Transports,
		AAGUID:       strings.TrimSpace(in.AAGUID),
		CreatedAt:    a.now(),
	}
	stored, err := a.store.SavePasskey(ctx, pk)
	if errors.Is(err, store.ErrPasskeyConflict) {
		return domain.Passkey{}, ErrPasskeyConflict
	}
	if err != nil {
		return domain.Passkey{}, fmt.Errorf("save passkey: %w", err)
	}
	return stored, nil
}

// ListPasskeys returns the user's credentials.
func (a *App) ListPasskeys(ctx context.Context, user domain.User) ([]domain.Passkey, error) {
	return a.store.ListPasskeysByUser(ctx, user.ID)
}
