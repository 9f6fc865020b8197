package domain

import (
	"strings"
	"time"
)

// Theme identifies one of the fixed poster art directions.
type Theme string

const (
	ThemeGalacticConquest Theme = "galactic-conquest"
	ThemeNinjaWarriors    Theme = "ninja-warriors"
	ThemeUrbanMetropolis  Theme = "urban-metropolis"
	ThemeFantasyRealm     Theme = "fantasy-realm"
	ThemeDeepSea          Theme = "deep-sea-adventure"
)

// AllThemes lists themes in selector order.
var AllThemes = []Theme{
	ThemeGalacticConquest,
	ThemeNinjaWarriors,
	ThemeUrbanMetropolis,
	ThemeFantasyRealm,
	ThemeDeepSea,
}

// ParseTheme reports whether s names a known theme.
func ParseTheme(s string) (Theme, bool) {
	t := Theme(strings.TrimSpace(s))
	for _, known := range AllThemes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// ModelType is the kind of build in the photo.
type ModelType string

const (
	ModelVehicle  ModelType = "vehicle"
	ModelBuilding ModelType = "building"
	ModelCreature ModelType = "creature"
	ModelFigure   ModelType = "figure"
	ModelUnknown  ModelType = "unknown"
)

// ParseModelType maps s to a model type. Anything unrecognised is ModelUnknown.
func ParseModelType(s string) ModelType {
	switch m := ModelType(strings.ToLower(strings.TrimSpace(s))); m {
	case ModelVehicle, ModelBuilding, ModelCreature, ModelFigure:
		return m
	default:
		return ModelUnknown
	}
}

// Theme labels stored on records that were not generated from a named theme.
const (
	ThemeLabelRandom = "Let us decide"
	ThemeLabelDebug  = "Debug"
)

// Owner is either anonymous or an authenticated user id.
type Owner struct {
	id string
}

// Anonymous returns the owner of records saved without a session.
func Anonymous() Owner { return Owner{} }

// Authenticated returns an owner for user id. A blank id is anonymous.
func Authenticated(id string) Owner {
	return Owner{id: strings.TrimSpace(id)}
}

func (o Owner) IsAnonymous() bool { return o.id == "" }

// ID returns the user id and true for authenticated owners.
func (o Owner) ID() (string, bool) {
	return o.id, o.id != ""
}

func (o Owner) String() string {
	if o.id == "" {
		return "anonymous"
	}
	return o.id
}

// Generation is an archived poster. Records are append-only.
type Generation struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Theme       string    `json:"theme"`
	StorageID   string    `json:"storageId"`
	OwnerID     string    `json:"userId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Passkey is a registered WebAuthn credential. Only the record is kept here.
type Passkey struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Name         string    `json:"name,omitempty"`
	PublicKey    string    `json:"publicKey"`
	CredentialID string    `json:"credentialID"`
	Counter      int64     `json:"counter"`
	DeviceType   string    `json:"deviceType"`
	BackedUp     bool      `json:"backedUp"`
	Transports   []string  `json:"transports,omitempty"`
	AAGUID       string    `json:"aaguid,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductType string

const (
	ProductPoster  ProductType = "poster"
	ProductCanvas  ProductType = "canvas"
	ProductSticker ProductType = "sticker"
)

type Product struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	PriceCents  int64       `json:"priceCents"`
	Dimensions  string      `json:"dimensions"`
	Type        ProductType `json:"type"`
	ImageRatio  float64     `json:"imageRatio"`
}

type Shipping struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

type OrderStatus string

const OrderPlaced OrderStatus = "placed"

type Order struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"userId"`
	ProductID    string      `json:"productId"`
	GenerationID string      `json:"generationId,omitempty"`
	Shipping     Shipping    `json:"shipping"`
	TotalCents   int64       `json:"totalCents"`
	Status       OrderStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// UploadTicket is a presigned upload target.
type UploadTicket struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
}
