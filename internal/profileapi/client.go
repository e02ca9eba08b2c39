// Package profileapi is the HTTP client for the profile resource. It owns
// base URL and auth header injection so callers only deal in domain values
// and classified errors.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/palaver-chat/palaver/internal/domain"
)

// Profile is the wire representation of a user profile.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// AvatarFile is a user-selected avatar image pending upload.
type AvatarFile struct {
	Filename string
	Content  []byte
}

// UpdateRequest carries the editable fields for a partial profile update.
type UpdateRequest struct {
	Username string
	Email    string
	Avatar   *AvatarFile
}

// UpdateResult is the envelope returned by a successful profile update. The
// server rotates the session token on every update, so callers must adopt
// AuthToken and treat Payload as the authoritative profile state.
type UpdateResult struct {
	AuthToken string  `json:"authToken"`
	Payload   Profile `json:"payload"`
}

// API is the contract the profile panel depends on. Tests substitute a fake.
type API interface {
	// GetProfile fetches the profile belonging to the session token.
	GetProfile(ctx context.Context, token string) (*Profile, error)
	// UpdateProfile submits a partial update for the identified profile.
	UpdateProfile(ctx context.Context, token, id string, req UpdateRequest) (*UpdateResult, error)
	// DeleteProfile permanently removes the identified profile.
	DeleteProfile(ctx context.Context, token, id string) error
}

// Client implements API over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a profile API client for the given base URL
// (e.g. "http://localhost:8080/api").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// GetProfile implements API.
func (c *Client) GetProfile(ctx context.Context, token string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	c.authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", domain.ClassifyTransport(err))
	}
	defer resp.Body.Close()

	if err := domain.ClassifyStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("profile fetch rejected (status %d): %w", resp.StatusCode, err)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", domain.ErrServerError)
	}
	return &profile, nil
}

// UpdateProfile implements API. The request body is a multipart form with
// username and email fields plus the avatar file when one is pending.
func (c *Client) UpdateProfile(ctx context.Context, token, id string, update UpdateRequest) (*UpdateResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("username", update.Username); err != nil {
		return nil, fmt.Errorf("failed to write username field: %w", err)
	}
	if err := writer.WriteField("email", update.Email); err != nil {
		return nil, fmt.Errorf("failed to write email field: %w", err)
	}
	if update.Avatar != nil {
		part, err := writer.CreateFormFile("avatar", update.Avatar.Filename)
		if err != nil {
			return nil, fmt.Errorf("failed to create avatar part: %w", err)
		}
		if _, err := io.Copy(part, bytes.NewReader(update.Avatar.Content)); err != nil {
			return nil, fmt.Errorf("failed to write avatar content: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/user/"+id, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build update request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile update failed: %w", domain.ClassifyTransport(err))
	}
	defer resp.Body.Close()

	if err := domain.ClassifyStatus(resp.StatusCode); err != nil {
		return nil, fmt.Errorf("profile update rejected (status %d): %w", resp.StatusCode, err)
	}

	var result UpdateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode update result: %w", domain.ErrServerError)
	}
	return &result, nil
}

// DeleteProfile implements API.
func (c *Client) DeleteProfile(ctx context.Context, token, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/user/"+id, nil)
	if err != nil {
		return fmt.Errorf("failed to build delete request: %w", err)
	}
	c.authorize(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("profile delete failed: %w", domain.ClassifyTransport(err))
	}
	defer resp.Body.Close()

	if err := domain.ClassifyStatus(resp.StatusCode); err != nil {
		return fmt.Errorf("profile delete rejected (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
