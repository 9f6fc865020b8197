package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brickpress/pkg/domain"
)

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"generate", "gallery", "themes", "signup", "login", "logout", "whoami", "products", "order", "orders"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)
	require.NotNil(t, cmd.PersistentFlags().Lookup("server"))
}

// fakeWeb mimics the web API closely enough for the CLI.
type fakeWeb struct {
	t          *testing.T
	generated  map[string]string
	authHeader string
}

func (f *fakeWeb) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-1",
			"user":  domain.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"},
		})
	case "/api/generate":
		f.authHeader = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			f.t.Errorf("parse form: %v", err)
		}
		f.generated = map[string]string{
			"name":              r.FormValue("name"),
			"theme":             r.FormValue("theme"),
			"useOriginalPrompt": r.FormValue("useOriginalPrompt"),
			"userId":            r.FormValue("userId"),
		}
		png := base64.StdEncoding.EncodeToString([]byte("fake-png"))
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "image": "data:image/png;base64," + png})
	case "/api/generations":
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []domain.Generation{{ID: "g-1", Name: "Star Voyager", Theme: "galactic-conquest"}},
			"count": 1,
		})
	case "/api/orders":
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown product", "code": "ORDER_UNKNOWN_PRODUCT", "requestId": "r-1"})
	default:
		http.NotFound(w, r)
	}
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateRequiresSession(t *testing.T) {
	t.Setenv("BRICKPRESS_TOKEN", "")
	web := httptest.NewServer(&fakeWeb{t: t})
	defer web.Close()
	dir := t.TempDir()
	photo := filepath.Join(dir, "ship.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))

	_, stderr, err := run(t, "--server", web.URL, "--config-dir", dir, "generate", photo, "--name", "Star Voyager", "--theme", "galactic-conquest")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, Reported(err))
	assert.Contains(t, stderr, "brickpress login")
}

func TestLoginThenGenerateWritesPoster(t *testing.T) {
	t.Setenv("BRICKPRESS_TOKEN", "")
	fake := &fakeWeb{t: t}
	web := httptest.NewServer(fake)
	defer web.Close()
	dir := t.TempDir()

	_, _, err := run(t, "--server", web.URL, "--config-dir", dir, "login", "--email", "ada@example.com", "--password", "Str0ng#Bricks")
	require.NoError(t, err)
	sess, err := LoadSession(dir)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "tok-1", sess.Token)

	photo := filepath.Join(dir, "ship.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))
	out := filepath.Join(dir, "poster.png")
	stdout, _, err := run(t, "--server", web.URL, "--config-dir", dir, "--format", "json",
		"generate", photo, "--name", "Star Voyager", "--description", "a red spaceship", "--theme", "galactic-conquest", "--out", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "fake-png", string(data))
	assert.Equal(t, "Bearer tok-1", fake.authHeader)
	assert.Equal(t, map[string]string{
		"name": "Star Voyager", "theme": "galactic-conquest", "useOriginalPrompt": "false", "userId": "u-1",
	}, fake.generated)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestGenerateLuckyAndUnknownTheme(t *testing.T) {
	fake := &fakeWeb{t: t}
	web := httptest.NewServer(fake)
	defer web.Close()
	dir := t.TempDir()
	t.Setenv("BRICKPRESS_TOKEN", "env-token")
	photo := filepath.Join(dir, "bot.jpg")
	require.NoError(t, os.WriteFile(photo, []byte("jpeg"), 0o600))

	_, _, err := run(t, "--server", web.URL, "--config-dir", dir, "generate", photo, "--name", "Brick Bot", "--theme", "space-pirates")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	t.Chdir(dir)
	stdout, _, err := run(t, "--server", web.URL, "--config-dir", dir, "generate", photo, "--name", "Brick Bot", "--lucky")
	require.NoError(t, err)
	assert.Equal(t, "true", fake.generated["useOriginalPrompt"])
	assert.Equal(t, "", fake.generated["theme"])
	assert.Contains(t, stdout, "brick-bot.png")
	assert.FileExists(t, filepath.Join(dir, "brick-bot.png"))
}

func TestGalleryTextOutput(t *testing.T) {
	web := httptest.NewServer(&fakeWeb{t: t})
	defer web.Close()
	stdout, _, err := run(t, "--server", web.URL, "--config-dir", t.TempDir(), "gallery")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Star Voyager")
	assert.Contains(t, stdout, "Galactic Conquest")
}

func TestAPIErrorsAreReportedAsJSON(t *testing.T) {
	web := httptest.NewServer(&fakeWeb{t: t})
	defer web.Close()
	stdout, _, err := run(t, "--server", web.URL, "--config-dir", t.TempDir(), "--format", "json",
		"order", "--product", "mug", "--ship-name", "Ada", "--ship-address", "1 Brick Rd", "--ship-city", "Billund", "--ship-zip", "7190")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ORDER_UNKNOWN_PRODUCT", resp.Error.Code)
	assert.Equal(t, "r-1", resp.Error.RequestID)
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Star Voyager":    "star-voyager",
		"  ":              "poster",
		"X-Wing #2!":      "x-wing-2",
		"Château Brique": "château-brique",
	}
	for in, want := range tests {
		assert.Equal(t, want, slug(in), in)
	}
}

func TestSessionRoundTripAndClear(t *testing.T) {
	dir := t.TempDir()
	sess, err := LoadSession(dir)
	require.NoError(t, err)
	assert.Nil(t, sess)

	require.NoError(t, SaveSession(dir, SavedSession{Token: "t", User: domain.User{ID: "u"}}))
	info, err := os.Stat(filepath.Join(dir, sessionFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, ClearSession(dir))
	require.NoError(t, ClearSession(dir))
	sess, err = LoadSession(dir)
	require.NoError(t, err)
	assert.Nil(t, sess)
}
