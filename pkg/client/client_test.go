package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"brickpress/pkg/domain"
)

func TestGenerateSendsMultipartForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("theme") != "ninja-warriors" || r.FormValue("useOriginalPrompt") != "false" || r.FormValue("name") != "Dojo" {
			t.Errorf("unexpected form %v", r.MultipartForm.Value)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer")
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			data, _ := io.ReadAll(file)
			if string(data) != "jpeg" || header.Header.Get("Content-Type") != "image/jpeg" {
				t.Errorf("unexpected image %q %v", data, header.Header)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "image": "data:image/png;base64,AA=="})
	}))
	defer srv.Close()

	img, err := New(srv.URL, "tok").Generate(context.Background(), GenerateRequest{
		Image: []byte("jpeg"), ImageMIMEType: "image/jpeg", Filename: "dojo.jpg",
		Name: "Dojo", Theme: domain.ThemeNinjaWarriors, ModelType: domain.ModelBuilding,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if img != "data:image/png;base64,AA==" {
		t.Fatalf("unexpected image %q", img)
	}
}

func TestErrorsCarryCodeAndRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": "Image generation failed", "code": "GENERATE_UPSTREAM_FAILED", "requestId": "req-1",
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Generate(context.Background(), GenerateRequest{Image: []byte("x"), UseOriginalPrompt: true})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != "GENERATE_UPSTREAM_FAILED" || apiErr.RequestID != "req-1" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}

func TestListEndpointsUnwrapItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/themes":
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []Theme{{ID: domain.ThemeFantasyRealm, Name: "Fantasy Realm"}}, "count": 1})
		case "/api/generations":
			if r.URL.Query().Get("limit") != "3" {
				t.Errorf("limit not forwarded")
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"items": []domain.Generation{}, "count": 0})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, "")

	themes, err := c.Themes(context.Background())
	if err != nil || len(themes) != 1 || themes[0].ID != domain.ThemeFantasyRealm {
		t.Fatalf("themes: %+v %v", themes, err)
	}
	gens, err := c.Generations(context.Background(), 3)
	if err != nil || len(gens) != 0 {
		t.Fatalf("generations: %+v %v", gens, err)
	}
}

func TestWithTokenDoesNotMutateOriginal(t *testing.T) {
	c := New("http://x", "")
	authed := c.WithToken("tok")
	if c.token != "" || authed.token != "tok" {
		t.Fatalf("unexpected tokens %q %q", c.token, authed.token)
	}
}
