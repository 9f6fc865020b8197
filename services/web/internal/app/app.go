package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"brickpress/internal/util"
	"brickpress/pkg/ai"
	"brickpress/pkg/domain"
	"brickpress/pkg/prompt"
	"brickpress/services/web/internal/archiveclient"
)

const defaultArchiveTimeout = 30 * time.Second

// Archiver is the subset of the archive API the generation flow writes to.
type Archiver interface {
	UploadFile(ctx context.Context, data []byte, mimeType string) (string, error)
	SaveGeneration(ctx context.Context, in archiveclient.SaveGenerationRequest) (string, error)
}

// Config holds runtime dependencies. A nil Generator means no API key is configured.
type Config struct {
	Generator      ai.ImageGenerator
	Archive        Archiver
	ArchiveTimeout time.Duration
}

// App turns uploaded photos into posters and archives them.
type App struct {
	generator      ai.ImageGenerator
	archive        Archiver
	archiveTimeout time.Duration
}

// New constructs the application.
func New(cfg Config) *App {
	timeout := cfg.ArchiveTimeout
	if timeout <= 0 {
		timeout = defaultArchiveTimeout
	}
	return &App{
		generator:      cfg.Generator,
		archive:        cfg.Archive,
		archiveTimeout: timeout,
	}
}

// GenerateRequest is one poster request as received from the client.
type GenerateRequest struct {
	Image             []byte
	ImageMIMEType     string
	Name              string
	Description       string
	Theme             string
	ModelType         string
	UseOriginalPrompt bool
	Owner             domain.Owner
}

// GenerateResult carries the generated poster.
type GenerateResult struct {
	Image        ai.Image
	GenerationID string
}

// DataURI returns the poster as a data URI.
func (r GenerateResult) DataURI() string { return r.Image.DataURI() }

// Generate validates the request, calls the image model and archives the
// result. Archive failures are logged and never fail the request.
func (a *App) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	if len(req.Image) == 0 {
		return GenerateResult{}, newError(KindValidation, "No image provided", nil)
	}
	theme, hasTheme := domain.ParseTheme(req.Theme)
	if !req.UseOriginalPrompt {
		if strings.TrimSpace(req.Theme) == "" {
			return GenerateResult{}, newError(KindValidation, "Theme selection required", nil)
		}
		if !hasTheme {
			return GenerateResult{}, newError(KindValidation, "Unknown theme", nil)
		}
	}
	if a.generator == nil {
		return GenerateResult{}, newError(KindConfiguration, "API Key not configured", nil)
	}

	text, err := prompt.Build(theme, domain.ParseModelType(req.ModelType), req.UseOriginalPrompt, req.Name, req.Description)
	if err != nil {
		return GenerateResult{}, newError(KindValidation, "Theme selection required", err)
	}

	logger := util.LoggerFromContext(ctx)
	logger.Info("generating poster", "theme", string(theme), "use_original", req.UseOriginalPrompt, "owner", req.Owner.String())
	img, err := a.generator.GenerateImage(ctx, text, ai.ImageInput{MIMEType: req.ImageMIMEType, Data: req.Image})
	if err != nil {
		if errors.Is(err, ai.ErrNoImage) {
			return GenerateResult{}, newError(KindGeneration, "Model generated a response but it contained no image data.", err)
		}
		return GenerateResult{}, newError(KindGeneration, "Image generation failed", err)
	}

	recordTheme := domain.ThemeLabelRandom
	if hasTheme {
		recordTheme = string(theme)
	}
	result := GenerateResult{Image: img}
	result.GenerationID = a.archiveBestEffort(ctx, img, req.Name, req.Description, recordTheme, req.Owner)
	return result, nil
}

// archiveBestEffort stores the poster and its record. It runs detached from
// the caller's cancellation and returns "" on any failure.
func (a *App) archiveBestEffort(ctx context.Context, img ai.Image, name, description, theme string, owner domain.Owner) string {
	logger := util.LoggerFromContext(ctx)
	if a.archive == nil {
		logger.Warn("archive not configured, skipping save")
		return ""
	}
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.archiveTimeout)
	defer cancel()

	id, err := a.store(archiveCtx, img, name, description, theme, owner)
	if err != nil {
		logger.Error("persistence error", "err", err)
		return ""
	}
	logger.Info("generation archived", "generation_id", id)
	return id
}

func (a *App) store(ctx context.Context, img ai.Image, name, description, theme string, owner domain.Owner) (string, error) {
	storageID, err := a.archive.UploadFile(ctx, img.Data, img.MIMEType)
	if err != nil {
		return "", newError(KindPersistence, "Failed to upload image", err)
	}
	save := archiveclient.SaveGenerationRequest{
		Name:        name,
		Description: description,
		Theme:       theme,
		StorageID:   storageID,
	}
	if id, ok := owner.ID(); ok {
		save.UserID = id
	}
	id, err := a.archive.SaveGeneration(ctx, save)
	if err != nil {
		return "", newError(KindPersistence, "Failed to save generation record", err)
	}
	return id, nil
}

// SaveCreationRequest is the debug path's payload: an already generated
// poster as a data URI.
type SaveCreationRequest struct {
	Image       string
	Name        string
	Description string
	Theme       string
	Owner       domain.Owner
}

// SaveCreation archives a poster directly. Unlike Generate, failures are returned.
func (a *App) SaveCreation(ctx context.Context, req SaveCreationRequest) (string, error) {
	img, err := ai.ParseDataURI(req.Image)
	if err != nil {
		return "", newError(KindValidation, "Invalid image data URI", err)
	}
	if a.archive == nil {
		return "", newError(KindConfiguration, "Archive not configured", nil)
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" {
		theme = domain.ThemeLabelDebug
	}
	storageID, err := a.archive.UploadFile(ctx, img.Data, img.MIMEType)
	if err != nil {
		return "", newError(KindPersistence, "Failed to upload image", err)
	}
	save := archiveclient.SaveGenerationRequest{
		Name:        req.Name,
		Description: req.Description,
		Theme:       theme,
		StorageID:   storageID,
	}
	if id, ok := req.Owner.ID(); ok {
		save.UserID = id
	}
	if _, err := a.archive.SaveGeneration(ctx, save); err != nil {
		return "", newError(KindPersistence, "Failed to save generation record", err)
	}
	util.LoggerFromContext(ctx).Info("debug creation saved", "storage_id", storageID)
	return storageID, nil
}
