// Package inventory holds the authoritative in-memory inventory list and
// reconciles per-item quantity mutations against the persistence API.
//
// All mutation paths (the add-item form, the scan flow, and in-list
// increment/decrement) route through this store; nothing else replaces or
// edits the list.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/bearcats-racing/stockchecker/internal/api"
	"github.com/bearcats-racing/stockchecker/internal/model"
)

// LowStockThreshold is the quantity at or below which an item counts as low
// in stock.
const LowStockThreshold = 5

var (
	// ErrNegativeQuantity rejects a mutation that would set quantity < 0.
	// Rejected locally; no request is issued.
	ErrNegativeQuantity = errors.New("inventory: quantity cannot be negative")
	// ErrUnknownRecord means the given id is not in the local list.
	ErrUnknownRecord = errors.New("inventory: unknown record id")
)

// API is the remote surface the store drives, satisfied by *api.Client.
type API interface {
	ListItems(ctx context.Context) ([]model.Record, error)
	UpdateItem(ctx context.Context, id string, req api.UpdateItemRequest) (*model.Record, error)
}

// Store is the inventory synchronization store. The record list it holds is
// only ever replaced wholesale (refresh) or per record (reconciled mutation),
// and callers always receive copies.
//
// Consistency is last-responder-wins: when two operations race, the response
// that resolves last overwrites local state regardless of request order. The
// in-flight flag lets a UI disable duplicate actions, which bounds but does
// not eliminate that race.
type Store struct {
	api API
	log *slog.Logger

	mu       sync.Mutex
	records  []model.Record
	inFlight map[string]bool
	closed   bool
}

// New creates an empty store backed by the given API client.
func New(client API, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		api:      client,
		log:      log,
		records:  []model.Record{},
		inFlight: make(map[string]bool),
	}
}

// Refresh fetches the full list and replaces local state wholesale.
// Concurrent refreshes are allowed; there is no staleness ordering, the last
// response to arrive wins.
func (s *Store) Refresh(ctx context.Context) error {
	records, err := s.api.ListItems(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		// The view is gone; drop the late response.
		return nil
	}
	s.records = records
	s.log.Debug("inventory refreshed", "count", len(records))
	return nil
}

// MutateQuantity sets a record's quantity through the remote API. Negative
// quantities are rejected locally without a network call. On success the
// server's returned representation replaces the local record wholesale; on
// failure the local record is left untouched and the error is returned for
// display, never retried here.
func (s *Store) MutateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 0 {
		return ErrNegativeQuantity
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return ErrUnknownRecord
	}
	location := s.records[idx].Location
	s.inFlight[id] = true
	s.mu.Unlock()

	updated, err := s.api.UpdateItem(ctx, id, api.UpdateItemRequest{
		Quantity: quantity,
		Location: location,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, id)
	if s.closed {
		return nil
	}
	if err != nil {
		s.log.Warn("quantity update failed", "id", id, "quantity", quantity, "err", err)
		return err
	}

	// The server response is authoritative, including normalized fields.
	if idx := s.indexLocked(id); idx >= 0 {
		s.records[idx] = *updated
	}
	s.log.Debug("quantity updated", "id", id, "quantity", updated.Quantity)
	return nil
}

// Increment raises a record's quantity by one from the last known local
// value.
func (s *Store) Increment(ctx context.Context, id string) error {
	current, err := s.quantity(id)
	if err != nil {
		return err
	}
	return s.MutateQuantity(ctx, id, current+1)
}

// Decrement lowers a record's quantity by one. A record already at zero is
// left alone: no request is issued and no error returned.
func (s *Store) Decrement(ctx context.Context, id string) error {
	current, err := s.quantity(id)
	if err != nil {
		return err
	}
	if current == 0 {
		return nil
	}
	return s.MutateQuantity(ctx, id, current-1)
}

// Filter returns records whose name or category contains q
// case-insensitively, preserving list order. An empty query returns the full
// list. Pure and synchronous: it reflects the list exactly as currently
// held.
func (s *Store) Filter(q string) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q == "" {
		return append([]model.Record{}, s.records...)
	}

	needle := strings.ToLower(q)
	matched := []model.Record{}
	for _, rec := range s.records {
		if strings.Contains(strings.ToLower(rec.Name), needle) ||
			strings.Contains(strings.ToLower(rec.Category), needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// LowStockCount returns the number of records at or below the low-stock
// threshold, recomputed from current state on every call.
func (s *Store) LowStockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if rec.Quantity <= LowStockThreshold {
			count++
		}
	}
	return count
}

// InFlight reports whether a mutation for the given id is outstanding, so a
// UI can disable that record's controls.
func (s *Store) InFlight(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight[id]
}

// Records returns a copy of the current list.
func (s *Store) Records() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Record{}, s.records...)
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close marks the store torn down. Responses that resolve afterwards are
// discarded instead of being applied to a dead view.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// quantity returns the last known local quantity for id.
func (s *Store) quantity(id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return 0, ErrUnknownRecord
	}
	return s.records[idx].Quantity, nil
}

// indexLocked returns the position of id in the list, or -1. Callers hold
// s.mu.
func (s *Store) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
