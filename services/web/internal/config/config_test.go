package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestArchiveSiteURLFallsBackToArchiveURL(t *testing.T) {
	path := writeConfig(t, "port: \"3000\"\narchiveURL: http://archive:8090/\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ArchiveSiteURL != "http://archive:8090" {
		t.Fatalf("expected site url fallback, got %q", cfg.ArchiveSiteURL)
	}
	if cfg.ArchiveJWKSURL != "http://archive:8090/auth/jwks" {
		t.Fatalf("unexpected jwks url %q", cfg.ArchiveJWKSURL)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: \"3000\"\narchiveURL: http://file\n")
	t.Setenv("ARCHIVE_SITE_URL", "http://site")
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("WEB_TRUSTED_PROXY_CIDRS", "10.0.0.0/8, ,127.0.0.1")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ArchiveSiteURL != "http://site" || cfg.GoogleAPIKey != "key" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if len(cfg.TrustedProxyCIDRs) != 2 {
		t.Fatalf("expected 2 proxies, got %v", cfg.TrustedProxyCIDRs)
	}
}

func TestMissingAPIKeyIsNotAStartupError(t *testing.T) {
	path := writeConfig(t, "port: \"3000\"\narchiveURL: http://archive\n")
	t.Setenv("GOOGLE_API_KEY", "")
	if _, err := Load(path); err != nil {
		t.Fatalf("web must start without an api key: %v", err)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing port", "archiveURL: http://a\n", "port is required"},
		{"missing archive", "port: \"3000\"\n", "archiveURL is required"},
		{"bad timeout", "port: \"3000\"\narchiveURL: http://a\ngenerationTimeout: soon\n", "generationTimeout"},
		{"negative limit", "port: \"3000\"\narchiveURL: http://a\ngenerateRateLimitPerMinute: -1\n", "rate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("WEB_PORT", "")
			t.Setenv("ARCHIVE_URL", "")
			_, err := Load(writeConfig(t, tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
