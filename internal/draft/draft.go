// Package draft implements the staging area for a new inventory record: an
// editable, validated draft that turns into a create request on submission.
package draft

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bearcats-racing/stockchecker/internal/api"
	"github.com/bearcats-racing/stockchecker/internal/model"
	"github.com/bearcats-racing/stockchecker/internal/recognition"
)

// SuccessWindow is how long the "saved" confirmation state is shown before
// the draft clears back to empty.
const SuccessWindow = 2 * time.Second

// ErrSubmitInFlight is returned when Submit is called while a previous
// submission has not resolved yet.
var ErrSubmitInFlight = errors.New("draft: submission already in progress")

// ValidationError is a per-field validation failure. It never reaches the
// network; the draft keeps its values so the user can correct and resubmit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Draft holds the editable field values. Quantity is kept as entered and
// coerced to an integer during validation, mirroring the form input.
type Draft struct {
	Name     string
	Category string
	Location string
	Quantity string
	ImageRef string
}

// Creator is the persistence surface a draft submits through, satisfied by
// *api.Client.
type Creator interface {
	CreateItem(ctx context.Context, req api.CreateItemRequest) (*model.Record, error)
}

// Builder owns a draft through its lifecycle: created empty, mutated by
// manual edits or recognition results, submitted, then cleared after a brief
// confirmation window on success or retained with the error on failure.
type Builder struct {
	creator Creator
	window  time.Duration
	log     *slog.Logger

	mu         sync.Mutex
	draft      Draft
	submitting bool
	succeeded  bool
	lastErr    error
	resetTimer *time.Timer
}

// NewBuilder creates an empty draft builder.
func NewBuilder(creator Creator, opts ...Option) *Builder {
	b := &Builder{
		creator: creator,
		window:  SuccessWindow,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Option configures a Builder.
type Option func(*Builder)

// WithSuccessWindow overrides the confirmation window duration.
func WithSuccessWindow(d time.Duration) Option {
	return func(b *Builder) { b.window = d }
}

// WithLogger sets the builder logger.
func WithLogger(log *slog.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// SetName sets the item name field.
func (b *Builder) SetName(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Name = name
}

// SetCategory sets the category field.
func (b *Builder) SetCategory(category string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Category = category
}

// SetLocation sets the storage location field. Free-form values are
// accepted; matching the known set is a UI nicety, not a rule.
func (b *Builder) SetLocation(location string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Location = location
}

// SetQuantity sets the quantity field as entered.
func (b *Builder) SetQuantity(quantity string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.Quantity = quantity
}

// AttachImage stages an image reference (data URI or URL) for submission.
func (b *Builder) AttachImage(ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.ImageRef = ref
}

// ClearImage drops the staged image reference.
func (b *Builder) ClearImage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft.ImageRef = ""
}

// ApplyRecognition fills draft fields from a recognition result. A quantity
// of zero from the scanner defaults to 1, matching the form default.
func (b *Builder) ApplyRecognition(r *recognition.Result) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.draft.Name = r.Name
	b.draft.Category = r.Category
	if r.Location != "" {
		b.draft.Location = r.Location
	}
	quantity := r.Quantity
	if quantity < 1 {
		quantity = 1
	}
	b.draft.Quantity = strconv.Itoa(quantity)
}

// Snapshot returns a copy of the current field values.
func (b *Builder) Snapshot() Draft {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.draft
}

// Err returns the retained user-visible error from the last submission, or
// nil.
func (b *Builder) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Succeeded reports whether the builder is in the confirmation window after
// a successful submission.
func (b *Builder) Succeeded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.succeeded
}

// Submitting reports whether a submission is currently in flight.
func (b *Builder) Submitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitting
}

// validate checks the draft against the creation rules and returns the
// coerced quantity.
func validate(d Draft) (int, *ValidationError) {
	if len(strings.TrimSpace(d.Name)) < 2 {
		return 0, &ValidationError{Field: "name", Message: "Item name must be at least 2 characters."}
	}
	if !model.ValidCategory(d.Category) {
		return 0, &ValidationError{Field: "category", Message: "Please select a category."}
	}
	if strings.TrimSpace(d.Location) == "" {
		return 0, &ValidationError{Field: "location", Message: "Please select a location."}
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(d.Quantity))
	if err != nil || quantity < 1 {
		return 0, &ValidationError{Field: "quantity", Message: "Quantity must be at least 1."}
	}
	return quantity, nil
}

// Submit validates the draft and persists it. On success the builder enters
// the confirmation state and clears itself once the window elapses; on
// failure every field value is retained and the error is kept for display.
func (b *Builder) Submit(ctx context.Context) (*model.Record, error) {
	b.mu.Lock()
	if b.submitting {
		b.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	quantity, vErr := validate(b.draft)
	if vErr != nil {
		b.lastErr = vErr
		b.mu.Unlock()
		return nil, vErr
	}

	req := api.CreateItemRequest{
		Name:     strings.TrimSpace(b.draft.Name),
		Category: b.draft.Category,
		Quantity: quantity,
		Location: strings.TrimSpace(b.draft.Location),
		ImageURL: b.draft.ImageRef,
	}
	b.submitting = true
	b.lastErr = nil
	b.mu.Unlock()

	record, err := b.creator.CreateItem(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.submitting = false

	if err != nil {
		// Keep the draft intact so nothing has to be re-entered.
		b.lastErr = err
		b.log.Warn("draft submission failed", "name", req.Name, "err", err)
		return nil, err
	}

	b.succeeded = true
	b.log.Info("item saved", "id", record.ID, "name", record.Name, "quantity", record.Quantity)
	if b.resetTimer != nil {
		b.resetTimer.Stop()
	}
	b.resetTimer = time.AfterFunc(b.window, b.reset)
	return record, nil
}

// reset clears the draft back to empty after the confirmation window.
func (b *Builder) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = Draft{}
	b.succeeded = false
	b.lastErr = nil
}
