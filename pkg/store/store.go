package store

import (
	"context"
	"errors"

	"brickpress/pkg/domain"
)

// ErrInvalidSession is returned for malformed, expired or revoked tokens.
var ErrInvalidSession = errors.New("invalid session")

// ErrPasskeyConflict is returned when a credential id is registered to another user.
var ErrPasskeyConflict = errors.New("passkey belongs to another user")

// Store defines persistence for users, generations, passkeys and orders.
type Store interface {
	// users
	SaveUser(ctx context.Context, u domain.User) error
	HasUserEmail(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error)
	GetUserByID(ctx context.Context, id string) (domain.User, bool, error)

	// generations are append-only
	CreateGeneration(ctx context.Context, g domain.Generation) error
	GetGeneration(ctx context.Context, id string) (domain.Generation, bool, error)
	ListGenerationsByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Generation, error)

	// passkeys; SavePasskey returns the stored record, which keeps the original
	// id and createdAt when the same user re-registers a credential.
	SavePasskey(ctx context.Context, p domain.Passkey) (domain.Passkey, error)
	ListPasskeysByUser(ctx context.Context, userID string) ([]domain.Passkey, error)

	// orders
	CreateOrder(ctx context.Context, o domain.Order) error
	ListOrdersByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
}

// Session is what a verified token says about its bearer.
type Session struct {
	UserID string
	Name   string
}

// SessionStore issues and verifies session tokens.
type SessionStore interface {
	NewSession(userID, name string) (string, error)
	GetSession(token string) (Session, error)
	DeleteSession(token string) error
}

// JWK represents a JSON Web Key entry used by JWKS endpoints.
type JWK struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n,omitempty"`
	E   string `json:"e,omitempty"`
}

// JWKSProvider is an optional capability exposed by session stores that can
// publish JSON Web Keys.
type JWKSProvider interface {
	JWKS() []JWK
}
