package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultImageModel = "gemini-2.5-flash-image"
	posterAspectRatio = "3:4"
	defaultGenTimeout = 180 * time.Second
	defaultInputMIME  = "image/jpeg"
	defaultOutputMIME = "image/png"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiImageGenerator calls a Gemini image model through the genai SDK.
type GeminiImageGenerator struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiImageGenerator constructs a generator for the Gemini API backend.
func NewGeminiImageGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiImageGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGeminiImageGenerator(client.Models, model, timeout), nil
}

func newGeminiImageGenerator(models contentGenerator, model string, timeout time.Duration) *GeminiImageGenerator {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	if model == "" {
		model = DefaultImageModel
	}
	if timeout <= 0 {
		timeout = defaultGenTimeout
	}
	return &GeminiImageGenerator{models: models, model: model, timeout: timeout}
}

// GenerateImage sends the prompt and photo and returns the first inline image.
func (g *GeminiImageGenerator) GenerateImage(ctx context.Context, prompt string, input ImageInput) (Image, error) {
	if len(input.Data) == 0 {
		return Image{}, fmt.Errorf("gemini: input image required")
	}
	mime := input.MIMEType
	if mime == "" {
		mime = defaultInputMIME
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		{InlineData: &genai.Blob{MIMEType: mime, Data: input.Data}},
	}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: posterAspectRatio},
	}
	resp, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config)
	if err != nil {
		return Image{}, fmt.Errorf("gemini generate: %w", err)
	}
	return extractImage(resp)
}

// extractImage scans every candidate for the first inline image part.
func extractImage(resp *genai.GenerateContentResponse) (Image, error) {
	if resp == nil {
		return Image{}, ErrNoImage
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			mime := part.InlineData.MIMEType
			if strings.TrimSpace(mime) == "" {
				mime = defaultOutputMIME
			}
			return Image{MIMEType: mime, Data: part.InlineData.Data}, nil
		}
	}
	return Image{}, ErrNoImage
}
