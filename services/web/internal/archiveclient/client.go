package archiveclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"brickpress/pkg/domain"
)

// Client calls the archive service over HTTP.
// Blob upload and record saves go to siteURL; everything else goes to baseURL.
type Client struct {
	baseURL    string
	siteURL    string
	httpClient *http.Client
}

// APIError represents an archive error response.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewClient constructs an archive client. An empty siteURL falls back to baseURL.
func NewClient(baseURL, siteURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	siteURL = strings.TrimRight(siteURL, "/")
	if siteURL == "" {
		siteURL = baseURL
	}
	return &Client{
		baseURL:    baseURL,
		siteURL:    siteURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SaveGenerationRequest is the record payload for /save-generation.
type SaveGenerationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Theme       string `json:"theme"`
	StorageID   string `json:"storageId"`
	UserID      string `json:"userId,omitempty"`
}

// OrderRequest is the payload for a print order.
type OrderRequest struct {
	ProductID    string          `json:"productId"`
	GenerationID string          `json:"generationId,omitempty"`
	Shipping     domain.Shipping `json:"shipping"`
}

// UploadFile stores raw image bytes and returns the storage id.
func (c *Client) UploadFile(ctx context.Context, data []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.siteURL+"/upload-file", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mimeType)
	var resp struct {
		StorageID string `json:"storageId"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	if resp.StorageID == "" {
		return "", errors.New("archive returned no storageId")
	}
	return resp.StorageID, nil
}

// SaveGeneration writes a generation record and returns its id.
func (c *Client) SaveGeneration(ctx context.Context, in SaveGenerationRequest) (string, error) {
	var resp struct {
		Success bool   `json:"success"`
		ID      string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.siteURL+"/save-generation", "", in, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// UploadURL mints a presigned upload ticket.
func (c *Client) UploadURL(ctx context.Context) (domain.UploadTicket, error) {
	var ticket domain.UploadTicket
	if err := c.doJSON(ctx, http.MethodGet, c.siteURL+"/get-upload-url", "", nil, &ticket); err != nil {
		return domain.UploadTicket{}, err
	}
	return ticket, nil
}

// RecentGenerations lists the caller's gallery, newest first.
func (c *Client) RecentGenerations(ctx context.Context, token string, limit int) ([]domain.Generation, error) {
	path := c.baseURL + "/generations/recent"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var gens []domain.Generation
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &gens); err != nil {
		return nil, err
	}
	if gens == nil {
		gens = []domain.Generation{}
	}
	return gens, nil
}

func (c *Client) SignUp(ctx context.Context, email, password, name string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password, "name": name}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/auth/signup", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/auth/login", "", payload, &resp); err != nil {
		return domain.User{}, "", err
	}
	return resp.User, resp.Token, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/auth/logout", token, nil, nil)
}

func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var user domain.User
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/auth/me", token, nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, in OrderRequest) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/orders", token, in, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) ListOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var resp listOrdersResponse
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/orders", token, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) doJSON(ctx context.Context, method, url, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Code: strings.TrimSpace(errResp.Code)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode archive response: %w", err)
	}
	return nil
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type listOrdersResponse struct {
	Items []domain.Order `json:"items"`
	Count int            `json:"count"`
}
