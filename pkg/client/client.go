// Package client is a Go client for the BrickPress web API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brickpress/pkg/domain"
)

// Client calls the web service over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError represents a web API error response.
type APIError struct {
	Status    int
	Message   string
	Code      string
	RequestID string
}

func (e *APIError) Error() string {
	return e.Message
}

// New constructs a client. token may be empty for anonymous use.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(token),
		// Poster generation can take minutes.
		httpClient: &http.Client{Timeout: 4 * time.Minute},
	}
}

// WithToken returns a copy of c that sends token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

// GenerateRequest is one poster request.
type GenerateRequest struct {
	Image             []byte
	ImageMIMEType     string
	Filename          string
	Name              string
	Description       string
	Theme             domain.Theme
	ModelType         domain.ModelType
	UseOriginalPrompt bool
	UserID            string
}

// Theme is a selectable universe.
type Theme struct {
	ID    domain.Theme `json:"id"`
	Name  string       `json:"name"`
	Emoji string       `json:"emoji"`
}

// Generate uploads a photo and returns the poster as a data URI.
func (c *Client) Generate(ctx context.Context, in GenerateRequest) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fields := map[string]string{
		"name":              in.Name,
		"description":       in.Description,
		"theme":             string(in.Theme),
		"modelType":         string(in.ModelType),
		"useOriginalPrompt": strconv.FormatBool(in.UseOriginalPrompt),
	}
	if in.UserID != "" {
		fields["userId"] = in.UserID
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if len(in.Image) > 0 {
		filename := in.Filename
		if filename == "" {
			filename = "model"
		}
		mimeType := in.ImageMIMEType
		if mimeType == "" {
			mimeType = http.DetectContentType(in.Image)
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		h.Set("Content-Type", mimeType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return "", err
		}
		if _, err := part.Write(in.Image); err != nil {
			return "", err
		}
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var resp struct {
		Success bool   `json:"success"`
		Image   string `json:"image"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.Image, nil
}

// SaveCreation archives an existing poster data URI and returns its storage id.
func (c *Client) SaveCreation(ctx context.Context, image, name, description string, theme domain.Theme) (string, error) {
	payload := map[string]string{"image": image, "name": name, "description": description, "theme": string(theme)}
	var resp struct {
		StorageID string `json:"storageId"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/save-creation", payload, &resp); err != nil {
		return "", err
	}
	return resp.StorageID, nil
}

// Generations lists the signed-in user's gallery.
func (c *Client) Generations(ctx context.Context, limit int) ([]domain.Generation, error) {
	path := "/api/generations"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var resp listResponse[domain.Generation]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Themes(ctx context.Context) ([]Theme, error) {
	var resp listResponse[Theme]
	if err := c.doJSON(ctx, http.MethodGet, "/api/themes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	var resp listResponse[domain.Product]
	if err := c.doJSON(ctx, http.MethodGet, "/api/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Session is a signed-in user and their bearer token.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (Session, error) {
	var s Session
	payload := map[string]string{"email": email, "password": password, "name": name}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/signup", payload, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	payload := map[string]string{"email": email, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", payload, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var u domain.User
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/me", nil, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// OrderRequest places a mock print order.
type OrderRequest struct {
	ProductID    string          `json:"productId"`
	GenerationID string          `json:"generationId,omitempty"`
	Shipping     domain.Shipping `json:"shipping"`
}

func (c *Client) PlaceOrder(ctx context.Context, in OrderRequest) (domain.Order, error) {
	var o domain.Order
	if err := c.doJSON(ctx, http.MethodPost, "/api/orders", in, &o); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (c *Client) Orders(ctx context.Context) ([]domain.Order, error) {
	var resp listResponse[domain.Order]
	if err := c.doJSON(ctx, http.MethodGet, "/api/orders", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error     string `json:"error"`
			Code      string `json:"code"`
			RequestID string `json:"requestId"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: errResp.Code, RequestID: errResp.RequestID}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
