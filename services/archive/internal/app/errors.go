package app

import (
	"errors"

	"brickpress/pkg/auth"
	"brickpress/pkg/printshop"
)

var (
	// ErrInvalidCredentials is shown to end users and must not enable account enumeration.
	ErrInvalidCredentials = errors.New("Incorrect email address or password")

	ErrEmailAndPasswordRequired = errors.New("email and password required")
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrInvalidEmail             = errors.New("invalid email")

	ErrStorageIDRequired = errors.New("storageId required")
	ErrUnknownStorageID  = errors.New("unknown storageId")
	ErrEmptyUpload       = errors.New("empty upload")
	ErrNotImage          = errors.New("content type must be an image")

	ErrPasskeyInvalid    = errors.New("publicKey and credentialID are required")
	ErrPasskeyConflict   = errors.New("passkey is registered to another account")
	ErrUnknownGeneration = errors.New("generation not found")
)

// IsClientError reports whether err should be shown to the caller as a 4xx.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidCredentials, ErrEmailAndPasswordRequired, ErrEmailAlreadyExists, ErrInvalidEmail,
		ErrStorageIDRequired, ErrUnknownStorageID, ErrEmptyUpload, ErrNotImage, ErrPasskeyInvalid, ErrPasskeyConflict,
		auth.ErrPasswordTooShort, auth.ErrPasswordTooLong, auth.ErrPasswordWeak,
		printshop.ErrUnknownProduct, printshop.ErrShippingRequired, ErrUnknownGeneration,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
