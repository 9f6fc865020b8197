package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brickpress/pkg/domain"
	"brickpress/pkg/storage"
	"brickpress/pkg/store"
	"brickpress/services/archive/internal/app"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	sessions, err := store.NewJWTRS256SessionStore(nil, "", time.Hour, store.NewMemoryTokenRevoker(), store.JWTOptions{})
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	core, err := app.New(app.Config{
		Store:    store.NewMemoryStore(),
		Blobs:    storage.NewMemoryStore(""),
		Sessions: sessions,
	})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	srv, err := New(Config{App: core, MaxUploadBytes: 1024})
	if err != nil {
		t.Fatalf("server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, token, contentType string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func signup(t *testing.T, base, email string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": "Str0ng#Bricks", "name": "Ada"})
	resp := do(t, http.MethodPost, base+"/auth/signup", "", "application/json", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status %d", resp.StatusCode)
	}
	return decode[sessionResponse](t, resp).Token
}

func TestUploadSaveAndListRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts.URL, "ada@example.com")

	resp := do(t, http.MethodPost, ts.URL+"/upload-file", "", "image/png", []byte("png-bytes"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upload status %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("archive responses must allow any origin")
	}
	storageID := decode[map[string]string](t, resp)["storageId"]
	if storageID == "" {
		t.Fatalf("expected storageId")
	}

	body, _ := json.Marshal(map[string]string{
		"name": "Star Voyager", "description": "a red spaceship", "theme": "galactic-conquest", "storageId": storageID,
	})
	resp = do(t, http.MethodPost, ts.URL+"/save-generation", token, "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status %d", resp.StatusCode)
	}
	saved := decode[map[string]any](t, resp)
	if saved["success"] != true {
		t.Fatalf("unexpected save response %v", saved)
	}

	resp = do(t, http.MethodGet, ts.URL+"/generations/recent?limit=5", token, "", nil)
	gens := decode[[]domain.Generation](t, resp)
	if len(gens) != 1 || gens[0].Name != "Star Voyager" || gens[0].ImageURL == "" {
		t.Fatalf("unexpected gallery %+v", gens)
	}
}

func TestRecentIsEmptyForAnonymousAndBadTokens(t *testing.T) {
	ts := newTestServer(t)
	for _, token := range []string{"", "not-a-token"} {
		resp := do(t, http.MethodGet, ts.URL+"/generations/recent", token, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("token %q: status %d", token, resp.StatusCode)
		}
		raw := new(bytes.Buffer)
		_, _ = raw.ReadFrom(resp.Body)
		if strings.TrimSpace(raw.String()) != "[]" {
			t.Fatalf("token %q: expected [], got %s", token, raw.String())
		}
	}
}

func TestSaveGenerationRequiresStorageID(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/save-generation", "", "application/json", []byte(`{"name":"x"}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if code := decode[errorResponse](t, resp).Code; code != "ARCHIVE_STORAGE_ID_REQUIRED" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestUploadFileRejectsOversizedBody(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodPost, ts.URL+"/upload-file", "", "image/png", bytes.Repeat([]byte("a"), 2048))
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestGetUploadURL(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/get-upload-url", "", "", nil)
	ticket := decode[domain.UploadTicket](t, resp)
	if ticket.StorageID == "" || !strings.Contains(ticket.URL, "method=PUT") {
		t.Fatalf("unexpected ticket %+v", ticket)
	}
}

func TestAuthFlowAndJWKS(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts.URL, "rex@example.com")

	resp := do(t, http.MethodGet, ts.URL+"/auth/me", token, "", nil)
	me := decode[domain.User](t, resp)
	if me.Email != "rex@example.com" || me.Name != "Ada" {
		t.Fatalf("unexpected me %+v", me)
	}

	resp = do(t, http.MethodPost, ts.URL+"/auth/login", "", "application/json", []byte(`{"email":"rex@example.com","password":"nope"}`))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", resp.StatusCode)
	}

	resp = do(t, http.MethodGet, ts.URL+"/auth/jwks", "", "", nil)
	keys := decode[map[string][]store.JWK](t, resp)["keys"]
	if len(keys) != 1 || keys[0].Alg != "RS256" {
		t.Fatalf("unexpected jwks %+v", keys)
	}

	resp = do(t, http.MethodPost, ts.URL+"/auth/logout", token, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/auth/me", token, "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestOrdersRequireSession(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/orders", "", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	token := signup(t, ts.URL, "shop@example.com")
	body := []byte(`{"productId":"poster-standard","shipping":{"name":"Ada","address":"1 Brick Rd","city":"Billund","zip":"7190"}}`)
	resp = do(t, http.MethodPost, ts.URL+"/orders", token, "application/json", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("order status %d", resp.StatusCode)
	}
	order := decode[domain.Order](t, resp)
	if order.TotalCents != 1999 {
		t.Fatalf("unexpected total %d", order.TotalCents)
	}

	resp = do(t, http.MethodPost, ts.URL+"/orders", token, "application/json", []byte(`{"productId":"poster-standard"}`))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing shipping, got %d", resp.StatusCode)
	}
	if code := decode[errorResponse](t, resp).Code; code != "ORDER_SHIPPING_REQUIRED" {
		t.Fatalf("unexpected code %q", code)
	}
}

func TestPreflightIsAnswered(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodOptions, ts.URL+"/save-generation", "", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", resp.StatusCode)
	}
}

func TestPasskeyOfAnotherUserIsConflict(t *testing.T) {
	ts := newTestServer(t)
	alice := signup(t, ts.URL, "alice@example.com")
	bob := signup(t, ts.URL, "bob@example.com")

	body := []byte(`{"name":"laptop","publicKey":"pk","credentialID":"cred-1","counter":42}`)
	if resp := do(t, http.MethodPost, ts.URL+"/auth/passkeys", alice, "application/json", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}

	body = []byte(`{"name":"pwned","publicKey":"pk2","credentialID":"cred-1","counter":0}`)
	resp := do(t, http.MethodPost, ts.URL+"/auth/passkeys", bob, "application/json", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if code := decode[errorResponse](t, resp).Code; code != "PASSKEY_CONFLICT" {
		t.Fatalf("unexpected code %q", code)
	}

	resp = do(t, http.MethodGet, ts.URL+"/auth/passkeys", alice, "", nil)
	list := decode[struct {
		Items []domain.Passkey `json:"items"`
	}](t, resp)
	if len(list.Items) != 1 || list.Items[0].Name != "laptop" || list.Items[0].Counter != 42 {
		t.Fatalf("alice's passkey changed: %+v", list.Items)
	}
}
