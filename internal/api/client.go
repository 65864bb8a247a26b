package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bearcats-racing/stockchecker/internal/auth"
	"github.com/bearcats-racing/stockchecker/internal/model"
)

// ErrNoBaseURL is returned when a request is attempted without a configured
// API base URL. There is deliberately no default host to fall back to.
var ErrNoBaseURL = errors.New("api: base URL not configured")

// Error is a non-2xx response from the persistence API. Message carries the
// server's "error" string verbatim so it can be shown to the user unchanged.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

// Client talks to the inventory persistence API.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *slog.Logger
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "https://stock.example.org". Required
	// for any call to succeed, but validated at call time, not here.
	BaseURL string
	// Token is an optional bearer token attached to every request.
	Token string
	// Timeout bounds each request end to end. Zero means 15 seconds.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// New creates a Client. The base URL may be empty; calls will then fail with
// ErrNoBaseURL.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		httpc:   &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// CreateItemRequest is the body for POST /api/items.
type CreateItemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Location string `json:"location,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// UpdateItemRequest is the body for PUT /api/items/{id}.
type UpdateItemRequest struct {
	Quantity int    `json:"quantity"`
	Location string `json:"location,omitempty"`
}

// ScanResult is the response from POST /api/scan.
type ScanResult struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
	RawText  string `json:"raw_text"`
}

// ListItems fetches the full inventory list.
func (c *Client) ListItems(ctx context.Context) ([]model.Record, error) {
	var records []model.Record
	if err := c.doJSON(ctx, http.MethodGet, "/api/items", nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// CreateItem persists a new inventory record and returns the server's
// representation of it.
func (c *Client) CreateItem(ctx context.Context, req CreateItemRequest) (*model.Record, error) {
	record := &model.Record{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/items", req, record); err != nil {
		return nil, err
	}
	return record, nil
}

// UpdateItem updates an existing record. The returned record is the server's
// authoritative representation, including any fields it normalized.
func (c *Client) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*model.Record, error) {
	record := &model.Record{}
	if err := c.doJSON(ctx, http.MethodPut, "/api/items/"+id, req, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Scan submits an encoded still image to the recognition endpoint. The image
// bytes are base64-encoded on the wire by the JSON codec.
func (c *Client) Scan(ctx context.Context, image []byte) (*ScanResult, error) {
	body := struct {
		Image []byte `json:"image"`
	}{Image: image}

	result := &ScanResult{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/scan", body, result); err != nil {
		return nil, err
	}
	return result, nil
}

// doJSON performs a JSON request/response round trip. Non-2xx responses are
// decoded into the API's {"error": "..."} convention and returned as *Error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, target any) error {
	if c.baseURL == "" {
		return ErrNoBaseURL
	}
	if c.token != "" {
		if err := auth.CheckToken(c.token, time.Now()); err != nil {
			return err
		}
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
