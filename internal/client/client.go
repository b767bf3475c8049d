// Package client is the HTTP consumer of the inventory API used by the
// dashboard hooks and the seeder.
package client

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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vehicle-inventory/internal/config"
	"github.com/ukydev/vehicle-inventory/internal/models"
	"github.com/ukydev/vehicle-inventory/internal/validation"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// ErrDegraded is returned by writes on a client built without configuration.
var ErrDegraded = errors.New("inventory client is not configured")

// API is the set of inventory operations a consumer can call.
type API interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	CreateVehicle(ctx context.Context, fields map[string]any) (*models.Vehicle, error)
	CreateDropdownSetting(ctx context.Context, setting models.DropdownSetting) (*models.DropdownSetting, error)
	DropdownOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownOption, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Details []validation.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, validation.Violations(e.Details).Error())
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the inventory API over HTTP.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a client for baseURL presenting anonKey on every request.
func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
}

// FromConfig returns a Client, or Noop when cfg is degraded.
func FromConfig(cfg config.ClientConfig, logger log.FieldLogger) API {
	if cfg.Degraded() {
		logger.WithField("missing", cfg.Missing).Warn("Inventory client not configured, using no-op client")
		return Noop{}
	}
	return New(cfg.APIURL, cfg.AnonKey)
}

// SetToken sets the bearer token sent with later requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends a request and decodes the data envelope of the response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var env struct {
			Error   string                  `json:"error"`
			Details []validation.FieldError `json:"details"`
		}
		if json.NewDecoder(resp.Body).Decode(&env) == nil && env.Error != "" {
			apiErr.Message = env.Error
			apiErr.Details = env.Details
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	env := struct {
		Data any `json:"data"`
	}{Data: out}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Login authenticates and keeps the session token for later requests.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Username: username, Password: password}, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// CreateVehicle posts a vehicle payload.
func (c *Client) CreateVehicle(ctx context.Context, fields map[string]any) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := c.do(ctx, http.MethodPost, "/api/vehicles", fields, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateDropdownSetting posts a dropdown setting. Requires an admin session.
func (c *Client) CreateDropdownSetting(ctx context.Context, setting models.DropdownSetting) (*models.DropdownSetting, error) {
	var created models.DropdownSetting
	if err := c.do(ctx, http.MethodPost, "/api/dropdown-settings", setting, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DropdownOptions fetches the options of category.
func (c *Client) DropdownOptions(ctx context.Context, category string, activeOnly bool) ([]models.DropdownOption, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("active_only", strconv.FormatBool(activeOnly))

	options := []models.DropdownOption{}
	if err := c.do(ctx, http.MethodGet, "/api/dropdown-settings?"+q.Encode(), nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// UnreadCount fetches the unread message count of userID.
func (c *Client) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var resp struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID)+"/messages/unread-count", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Noop stands in for Client when the API is not configured. Reads return
// empty results; writes fail with ErrDegraded.
type Noop struct{}

func (Noop) Login(context.Context, string, string) (*models.LoginResponse, error) {
	return nil, ErrDegraded
}

func (Noop) CreateVehicle(context.Context, map[string]any) (*models.Vehicle, error) {
	return nil, ErrDegraded
}

func (Noop) CreateDropdownSetting(context.Context, models.DropdownSetting) (*models.DropdownSetting, error) {
	return nil, ErrDegraded
}

func (Noop) DropdownOptions(context.Context, string, bool) ([]models.DropdownOption, error) {
	return []models.DropdownOption{}, nil
}

func (Noop) UnreadCount(context.Context, string) (int64, error) {
	return 0, nil
}
