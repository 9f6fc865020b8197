package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"brickpress/internal/ratelimit"
	"brickpress/internal/usertoken"
	"brickpress/internal/util"
	"brickpress/pkg/domain"
	"brickpress/pkg/printshop"
	"brickpress/pkg/prompt"
	"brickpress/services/web/internal/app"
	"brickpress/services/web/internal/archiveclient"
)

const defaultMaxUploadBytes = 20 << 20

// Config wires required dependencies for the HTTP server.
type Config struct {
	App            *app.App
	Archive        *archiveclient.Client
	TokenVerifier  *usertoken.Verifier
	GenerateLimit  *ratelimit.FixedWindowLimiter
	TrustedProxies *util.TrustedProxies
	MaxUploadBytes int64
}

// Server exposes the public BrickPress API.
type Server struct {
	app            *app.App
	archive        *archiveclient.Client
	tokenVerifier  *usertoken.Verifier
	generateLimit  *ratelimit.FixedWindowLimiter
	trustedProxies *util.TrustedProxies
	maxUploadBytes int64
	mux            *http.ServeMux
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app required")
	}
	if cfg.Archive == nil {
		return nil, errors.New("archive client required")
	}
	maxUploadBytes := cfg.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	s := &Server{
		app:            cfg.App,
		archive:        cfg.Archive,
		tokenVerifier:  cfg.TokenVerifier,
		generateLimit:  cfg.GenerateLimit,
		trustedProxies: cfg.TrustedProxies,
		maxUploadBytes: maxUploadBytes,
		mux:            http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.Chain("web", s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// poster generation
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/save-creation", s.handleSaveCreation)
	s.mux.HandleFunc("/api/generations", s.handleGenerations)
	s.mux.HandleFunc("/api/themes", s.handleThemes)
	s.mux.HandleFunc("/api/upload-url", s.handleUploadURL)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.HandleFunc("/api/auth/logout", s.handleLogout)
	s.mux.Handle("/api/users/me", s.authenticated(s.handleMe))

	// print shop
	s.mux.HandleFunc("/api/products", s.handleProducts)
	s.mux.Handle("/api/orders", s.authenticated(s.handleOrders))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type tokenHandler func(http.ResponseWriter, *http.Request, string)

// authenticated requires a bearer token that verifies locally. Archive
// remains the authority for revocation on the proxied call.
func (s *Server) authenticated(next tokenHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "web.authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if s.tokenVerifier != nil {
			if _, err := s.tokenVerifier.Verify(r.Context(), token); err != nil {
				s.audit(r, "web.authorize", "fail", "reason", "invalid_signature_or_claims")
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next(w, r, token)
	})
}

// resolveOwner turns the request's credentials into an Owner. A verified
// bearer token wins; otherwise the client-supplied userId is used as is.
// Verification failures fall back to anonymous.
func (s *Server) resolveOwner(r *http.Request, userID string) domain.Owner {
	if token, ok := bearerToken(r); ok && s.tokenVerifier != nil {
		identity, err := s.tokenVerifier.Verify(r.Context(), token)
		if err == nil {
			return domain.Authenticated(identity.Subject)
		}
		util.LoggerFromContext(r.Context()).Warn("session verification failed", "err", err)
	}
	if strings.TrimSpace(userID) != "" {
		return domain.Authenticated(userID)
	}
	return domain.Anonymous()
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.generateLimit, "too many generation requests") {
		s.audit(r, "web.generate", "rate_limited")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	req := app.GenerateRequest{
		Name:              r.FormValue("name"),
		Description:       r.FormValue("description"),
		Theme:             r.FormValue("theme"),
		ModelType:         r.FormValue("modelType"),
		UseOriginalPrompt: r.FormValue("useOriginalPrompt") == "true",
	}
	if file, header, err := r.FormFile("image"); err == nil {
		data, readErr := io.ReadAll(file)
		file.Close()
		if readErr != nil {
			writeError(w, http.StatusBadRequest, "failed to read image")
			return
		}
		req.Image = data
		req.ImageMIMEType = header.Header.Get("Content-Type")
	}
	req.Owner = s.resolveOwner(r, r.FormValue("userId"))

	result, err := s.app.Generate(r.Context(), req)
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Success: true, Image: result.DataURI()})
}

type generateResponse struct {
	Success bool   `json:"success"`
	Image   string `json:"image"`
}

type saveCreationRequest struct {
	Image       string `json:"image"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	UserID      string `json:"userId"`
}

func (s *Server) handleSaveCreation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req saveCreationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, s.maxUploadBytes*2)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	storageID, err := s.app.SaveCreation(r.Context(), app.SaveCreationRequest{
		Image:       req.Image,
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		Owner:       s.resolveOwner(r, req.UserID),
	})
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "storageId": storageID})
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	gens := []domain.Generation{}
	if token, ok := bearerToken(r); ok {
		items, err := s.archive.RecentGenerations(r.Context(), token, limit)
		if err != nil {
			util.LoggerFromContext(r.Context()).Error("gallery lookup failed", "err", err)
		} else {
			gens = items
		}
	}
	writeJSON(w, http.StatusOK, listResponse[domain.Generation]{Items: gens, Count: len(gens)})
}

type themeItem struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// handleUploadURL hands out a presigned archive upload target for clients that
// push the photo to storage themselves.
func (s *Server) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	ticket, err := s.archive.UploadURL(r.Context())
	if err != nil {
		writeArchiveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	infos := prompt.Themes()
	items := make([]themeItem, 0, len(infos))
	for _, info := range infos {
		items = append(items, themeItem{ID: string(info.ID), Name: info.Name, Emoji: info.Emoji})
	}
	writeJSON(w, http.StatusOK, listResponse[themeItem]{Items: items, Count: len(items)})
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	products := printshop.Products()
	writeJSON(w, http.StatusOK, listResponse[domain.Product]{Items: products, Count: len(products)})
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.archive.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.audit(r, "web.signup", "fail", "reason", err.Error())
		writeArchiveError(w, r, err)
		return
	}
	s.audit(r, "web.signup", "success", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req authRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	user, token, err := s.archive.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.audit(r, "web.login", "fail", "reason", err.Error())
		writeArchiveError(w, r, err)
		return
	}
	s.audit(r, "web.login", "success", "user_id", user.ID)
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := s.archive.Logout(r.Context(), token); err != nil {
		writeArchiveError(w, r, err)
		return
	}
	s.audit(r, "web.logout", "success")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	user, err := s.archive.Me(r.Context(), token)
	if err != nil {
		writeArchiveError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request, token string) {
	switch r.Method {
	case http.MethodGet:
		orders, err := s.archive.ListOrders(r.Context(), token)
		if err != nil {
			writeArchiveError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse[domain.Order]{Items: orders, Count: len(orders)})
	case http.MethodPost:
		var req archiveclient.OrderRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		// Reject obviously bad orders before the archive round trip.
		if _, ok := printshop.Lookup(req.ProductID); !ok {
			writeError(w, http.StatusBadRequest, printshop.ErrUnknownProduct.Error())
			return
		}
		order, err := s.archive.CreateOrder(r.Context(), token, req)
		if err != nil {
			writeArchiveError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	default:
		methodNotAllowed(w)
	}
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch app.KindOf(err) {
	case app.KindValidation:
		status = http.StatusBadRequest
	case app.KindGeneration:
		status = http.StatusBadGateway
	}
	if status != http.StatusBadRequest {
		util.LoggerFromContext(r.Context()).Error("request failed", "kind", string(app.KindOf(err)), "err", err)
	}
	writeErrorCode(w, status, app.Message(err), errorCodeForKind(app.KindOf(err), status))
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", util.ClientIP(r, s.trustedProxies),
	}
	logAttrs = append(logAttrs, attrs...)
	logger := util.LoggerFromContext(r.Context())
	if outcome == "success" {
		logger.Info("security_event", logAttrs...)
		return
	}
	logger.Warn("security_event", logAttrs...)
}

// allowRate applies limiter when configured. A nil limiter allows everything.
func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	if limiter == nil {
		return true
	}
	key := r.URL.Path + "|" + util.ClientIP(r, s.trustedProxies)
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if limiter.Allow(ctx, key) {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(limiter.Window().Seconds())))
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeErrorCode(w, status, msg, errorCodeForWeb(status, msg))
}

func writeErrorCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{
		Error:     msg,
		Code:      code,
		RequestID: strings.TrimSpace(w.Header().Get(util.RequestIDHeader)),
	})
}

func writeArchiveError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *archiveclient.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.Code
		if code == "" {
			code = errorCodeForWeb(apiErr.Status, apiErr.Message)
		}
		writeErrorCode(w, apiErr.Status, apiErr.Message, code)
		return
	}
	util.LoggerFromContext(r.Context()).Error("archive unreachable", "err", err)
	writeError(w, http.StatusBadGateway, "archive service unavailable")
}

func errorCodeForKind(kind app.Kind, status int) string {
	switch kind {
	case app.KindValidation:
		return "GENERATE_INVALID_REQUEST"
	case app.KindConfiguration:
		return "SYSTEM_NOT_CONFIGURED"
	case app.KindGeneration:
		return "GENERATE_UPSTREAM_FAILED"
	case app.KindPersistence:
		return "ARCHIVE_PERSISTENCE_FAILED"
	}
	return errorCodeForWeb(status, "")
}

func errorCodeForWeb(status int, msg string) string {
	message := strings.ToLower(strings.TrimSpace(msg))
	switch {
	case message == "unauthorized":
		return "AUTH_INVALID_TOKEN"
	case message == "file too large":
		return "GENERATE_FILE_TOO_LARGE"
	case message == "invalid multipart form", message == "failed to read image":
		return "GENERATE_INVALID_REQUEST"
	case strings.HasPrefix(message, "too many"):
		return "RATE_LIMITED"
	case strings.HasPrefix(message, "unknown product"):
		return "ORDER_UNKNOWN_PRODUCT"
	case message == "archive service unavailable":
		return "ARCHIVE_UNAVAILABLE"
	case message == "invalid json body":
		return "REQUEST_INVALID_JSON"
	case message == "method not allowed":
		return "SYSTEM_METHOD_NOT_ALLOWED"
	}

	switch status {
	case http.StatusBadRequest:
		return "REQUEST_INVALID"
	case http.StatusUnauthorized:
		return "AUTH_INVALID_TOKEN"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusMethodNotAllowed:
		return "SYSTEM_METHOD_NOT_ALLOWED"
	default:
		if status >= http.StatusInternalServerError {
			return "SYSTEM_INTERNAL_ERROR"
		}
		return "REQUEST_ERROR"
	}
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", false
	}
	return token, true
}
