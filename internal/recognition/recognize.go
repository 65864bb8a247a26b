// Package recognition maps a captured still image onto draft record fields
// via the external recognition endpoint. Recognition itself happens
// server-side; this client only ships the image and interprets the response.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bearcats-racing/stockchecker/internal/api"
)

// Scanner is the recognition transport, satisfied by *api.Client.
type Scanner interface {
	Scan(ctx context.Context, image []byte) (*api.ScanResult, error)
}

// Error is a recognition failure. The message carries the upstream error
// text when available so the user sees what the service said.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "recognition failed: " + e.Message
	}
	return "recognition failed"
}

func (e *Error) Unwrap() error { return e.Err }

// Result is the best-effort field extraction from a scanned image.
type Result struct {
	Name     string
	Quantity int
	Location string
	Category string
	RawText  string
}

// Client wraps the scan endpoint with category inference.
type Client struct {
	scanner Scanner
	log     *slog.Logger
}

// NewClient creates a recognition client on top of the given transport.
func NewClient(scanner Scanner, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{scanner: scanner, log: log}
}

// Recognize submits an encoded still image and maps the structured result
// onto draft fields. Failures are never retried here; the caller lets the
// user re-attempt capture or fall back to manual entry.
func (c *Client) Recognize(ctx context.Context, image []byte) (*Result, error) {
	if len(image) == 0 {
		return nil, &Error{Message: "no image captured"}
	}

	scan, err := c.scanner.Scan(ctx, image)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, &Error{Message: apiErr.Message, Err: err}
		}
		return nil, &Error{Message: err.Error(), Err: err}
	}

	result := &Result{
		Name:     scan.Name,
		Quantity: scan.Quantity,
		Location: scan.Location,
		Category: InferCategory(scan.RawText),
		RawText:  scan.RawText,
	}
	c.log.Info("image recognized",
		"name", result.Name,
		"category", result.Category,
		"quantity", result.Quantity,
	)
	return result, nil
}

// String implements a compact description for logging.
func (r *Result) String() string {
	return fmt.Sprintf("%s (%s) x%d", r.Name, r.Category, r.Quantity)
}
