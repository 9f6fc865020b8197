package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"brickpress/pkg/ai"
	"brickpress/pkg/domain"
	"brickpress/services/web/internal/archiveclient"
)

type fakeGenerator struct {
	calls  int
	prompt string
	input  ai.ImageInput
	img    ai.Image
	err    error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, text string, input ai.ImageInput) (ai.Image, error) {
	f.calls++
	f.prompt = text
	f.input = input
	return f.img, f.err
}

type fakeArchive struct {
	mu        sync.Mutex
	uploads   [][]byte
	saves     []archiveclient.SaveGenerationRequest
	uploadErr error
	saveErr   error
	ctxErr    error
}

func (f *fakeArchive) UploadFile(ctx context.Context, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ctxErr = ctx.Err()
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.uploads = append(f.uploads, data)
	return "blob-1", nil
}

func (f *fakeArchive) SaveGeneration(_ context.Context, in archiveclient.SaveGenerationRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saves = append(f.saves, in)
	return "gen-1", nil
}

func poster() ai.Image {
	return ai.Image{MIMEType: "image/png", Data: []byte("poster")}
}

func TestGenerateValidatesBeforeCallingUpstream(t *testing.T) {
	cases := []struct {
		name string
		req  GenerateRequest
		msg  string
	}{
		{"no image", GenerateRequest{Theme: "ninja-warriors"}, "No image provided"},
		{"no theme", GenerateRequest{Image: []byte("x")}, "Theme selection required"},
		{"unknown theme", GenerateRequest{Image: []byte("x"), Theme: "space-pirates"}, "Unknown theme"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{img: poster()}
			archive := &fakeArchive{}
			_, err := New(Config{Generator: gen, Archive: archive}).Generate(context.Background(), tc.req)
			if KindOf(err) != KindValidation || Message(err) != tc.msg {
				t.Fatalf("expected validation %q, got %v", tc.msg, err)
			}
			if gen.calls != 0 || len(archive.uploads) != 0 {
				t.Fatalf("no upstream call expected")
			}
		})
	}
}

func TestGenerateWithoutGeneratorIsConfigurationError(t *testing.T) {
	_, err := New(Config{}).Generate(context.Background(), GenerateRequest{Image: []byte("x"), UseOriginalPrompt: true})
	if KindOf(err) != KindConfiguration || Message(err) != "API Key not configured" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestGenerateUseOriginalNeedsNoTheme(t *testing.T) {
	gen := &fakeGenerator{img: poster()}
	archive := &fakeArchive{}
	res, err := New(Config{Generator: gen, Archive: archive}).Generate(context.Background(), GenerateRequest{
		Image: []byte("photo"), ImageMIMEType: "image/jpeg", Name: "Brick Bot", Description: "a robot", UseOriginalPrompt: true,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.DataURI() != poster().DataURI() {
		t.Fatalf("unexpected data uri %q", res.DataURI())
	}
	if len(archive.saves) != 1 || archive.saves[0].Theme != domain.ThemeLabelRandom {
		t.Fatalf("expected random theme label, got %+v", archive.saves)
	}
	if archive.saves[0].UserID != "" {
		t.Fatalf("anonymous owner must not set userId")
	}
}

func TestGenerateStarVoyagerScenario(t *testing.T) {
	gen := &fakeGenerator{img: poster()}
	archive := &fakeArchive{}
	res, err := New(Config{Generator: gen, Archive: archive}).Generate(context.Background(), GenerateRequest{
		Image:         []byte("photo"),
		ImageMIMEType: "image/jpeg",
		Name:          "Star Voyager",
		Description:   "a red spaceship",
		Theme:         "galactic-conquest",
		ModelType:     "vehicle",
		Owner:         domain.Authenticated("user-7"),
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, want := range []string{"Star Voyager", "a red spaceship", "3:4", "Theme Specifications:"} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if string(gen.input.Data) != "photo" || gen.input.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected model input %+v", gen.input)
	}
	if res.GenerationID != "gen-1" {
		t.Fatalf("expected generation id, got %q", res.GenerationID)
	}
	save := archive.saves[0]
	if save.Theme != "galactic-conquest" || save.UserID != "user-7" || save.StorageID != "blob-1" {
		t.Fatalf("unexpected record %+v", save)
	}
}

func TestGenerateNoImageSkipsPersistence(t *testing.T) {
	gen := &fakeGenerator{err: ai.ErrNoImage}
	archive := &fakeArchive{}
	_, err := New(Config{Generator: gen, Archive: archive}).Generate(context.Background(), GenerateRequest{
		Image: []byte("x"), Theme: "fantasy-realm",
	})
	if KindOf(err) != KindGeneration {
		t.Fatalf("expected generation error, got %v", err)
	}
	if !errors.Is(err, ai.ErrNoImage) {
		t.Fatalf("expected wrapped ErrNoImage")
	}
	if len(archive.uploads) != 0 || len(archive.saves) != 0 {
		t.Fatalf("no persistence call expected")
	}
}

func TestGeneratePersistenceFailureStillSucceeds(t *testing.T) {
	for _, archive := range []*fakeArchive{
		{uploadErr: errors.New("archive down")},
		{saveErr: errors.New("db down")},
	} {
		gen := &fakeGenerator{img: poster()}
		res, err := New(Config{Generator: gen, Archive: archive}).Generate(context.Background(), GenerateRequest{
			Image: []byte("x"), Theme: "urban-metropolis",
		})
		if err != nil {
			t.Fatalf("persistence failure must not fail the request: %v", err)
		}
		if len(res.Image.Data) == 0 || res.GenerationID != "" {
			t.Fatalf("unexpected result %+v", res)
		}
	}
}

func TestGenerateArchivesAfterCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gen := &fakeGenerator{img: poster()}
	archive := &fakeArchive{}
	a := New(Config{Generator: cancelAfter{gen, cancel}, Archive: archive})
	if _, err := a.Generate(ctx, GenerateRequest{Image: []byte("x"), Theme: "deep-sea-adventure"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if archive.ctxErr != nil {
		t.Fatalf("archive context should survive caller cancellation, got %v", archive.ctxErr)
	}
	if len(archive.saves) != 1 {
		t.Fatalf("expected record to be saved")
	}
}

type cancelAfter struct {
	gen    *fakeGenerator
	cancel context.CancelFunc
}

func (c cancelAfter) GenerateImage(ctx context.Context, text string, input ai.ImageInput) (ai.Image, error) {
	img, err := c.gen.GenerateImage(ctx, text, input)
	c.cancel()
	return img, err
}

func TestSaveCreation(t *testing.T) {
	archive := &fakeArchive{}
	a := New(Config{Archive: archive})
	id, err := a.SaveCreation(context.Background(), SaveCreationRequest{
		Image: poster().DataURI(), Name: "Debug", Owner: domain.Authenticated("u-1"),
	})
	if err != nil {
		t.Fatalf("save creation: %v", err)
	}
	if id != "blob-1" || archive.saves[0].Theme != domain.ThemeLabelDebug || archive.saves[0].UserID != "u-1" {
		t.Fatalf("unexpected save id=%q %+v", id, archive.saves)
	}

	if _, err := a.SaveCreation(context.Background(), SaveCreationRequest{Image: "not-a-uri"}); KindOf(err) != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	failing := New(Config{Archive: &fakeArchive{saveErr: errors.New("down")}})
	if _, err := failing.SaveCreation(context.Background(), SaveCreationRequest{Image: poster().DataURI()}); KindOf(err) != KindPersistence {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
