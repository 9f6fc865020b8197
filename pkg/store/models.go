package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;not null"`
	Name         string
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time
}

type GenerationModel struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string `gorm:"type:text"`
	Theme       string
	StorageID   string    `gorm:"not null"`
	OwnerID     *string   `gorm:"index:idx_generation_owner_created,priority:1"`
	CreatedAt   time.Time `gorm:"not null;index;index:idx_generation_owner_created,priority:2,sort:desc"`
}

type PasskeyModel struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"not null;index"`
	Name         string
	PublicKey    string `gorm:"type:text;not null"`
	CredentialID string `gorm:"uniqueIndex;not null"`
	Counter      int64
	DeviceType   string
	BackedUp     bool
	Transports   datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	AAGUID       string
	CreatedAt    time.Time `gorm:"not null"`
}

type OrderModel struct {
	ID           string `gorm:"primaryKey"`
	OwnerID      string `gorm:"not null;index"`
	ProductID    string `gorm:"not null"`
	GenerationID string
	Shipping     datatypes.JSON `gorm:"type:jsonb"`
	TotalCents   int64          `gorm:"not null"`
	Status       string         `gorm:"not null"`
	CreatedAt    time.Time      `gorm:"not null;index"`
}
