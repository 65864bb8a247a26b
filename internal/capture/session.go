package capture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bearcats-racing/stockchecker/internal/imaging"
)

// State is the capture session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session owns the device camera lifecycle: acquisition, facing switch,
// release, and frame capture. At most one stream handle is held at any time,
// and every transition out of the active state releases the held stream
// before the transition completes.
type Session struct {
	opener Opener
	hint   Hint
	log    *slog.Logger

	mu        sync.Mutex
	id        string
	state     State
	facing    Facing
	device    Device
	lastImage []byte
}

// NewSession creates an idle session using the given device opener.
func NewSession(opener Opener, opts ...Option) *Session {
	s := &Session{
		opener: opener,
		hint:   DefaultHint,
		log:    slog.Default(),
		id:     uuid.New().String(),
		state:  StateIdle,
		facing: FacingEnvironment,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Option configures a Session.
type Option func(*Session)

// WithHint sets the target resolution hint passed to the device opener.
func WithHint(hint Hint) Option {
	return func(s *Session) { s.hint = hint }
}

// WithLogger sets the session logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// Start requests a video stream with the given facing preference. On success
// the session becomes active. Any acquisition failure transitions the session
// to the error state; the failed attempt is terminal, retrying is the
// caller's decision. If a stream is already held it is released first, so the
// single-handle invariant holds across repeated Start calls.
func (s *Session) Start(ctx context.Context, facing Facing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked(ctx, facing)
}

func (s *Session) startLocked(ctx context.Context, facing Facing) error {
	s.releaseLocked()

	device, err := s.opener.Open(ctx, facing, s.hint)
	if err != nil {
		s.state = StateError
		s.log.Warn("capture start failed", "session", s.id, "facing", facing, "err", err)
		return fmt.Errorf("starting capture (facing %s): %w", facing, err)
	}

	s.device = device
	s.facing = facing
	s.state = StateActive
	s.log.Info("capture started", "session", s.id, "facing", facing)
	return nil
}

// SwitchFacing releases the current stream and reacquires with the opposite
// facing. On failure the session is left in the error state with no stream
// held; there is no silent no-op.
func (s *Session) SwitchFacing(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return ErrNoActiveStream
	}
	return s.startLocked(ctx, s.facing.Opposite())
}

// Stop releases the held stream unconditionally and returns the session to
// idle. Safe to call in any state, including when already idle.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releaseLocked()
	if s.state != StateIdle {
		s.log.Info("capture stopped", "session", s.id)
	}
	s.state = StateIdle
}

// CaptureFrame copies the current video frame into a JPEG still and
// implicitly stops the session. Valid only while active; otherwise fails with
// ErrNoActiveStream and leaves the state unchanged.
func (s *Session) CaptureFrame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return nil, ErrNoActiveStream
	}

	frame, err := s.device.ReadFrame(ctx)
	if err != nil {
		s.releaseLocked()
		s.state = StateError
		s.log.Warn("frame read failed", "session", s.id, "err", err)
		return nil, fmt.Errorf("%w: reading frame: %v", ErrAcquisitionFailed, err)
	}
	if frame.TraceID == "" {
		frame.TraceID = uuid.New().String()
	}

	encoded, err := imaging.EncodeFrame(frame.Width, frame.Height, frame.Data)

	// The capture attempt consumes the stream either way.
	s.releaseLocked()
	s.state = StateIdle

	if err != nil {
		s.log.Warn("frame encode failed", "session", s.id, "trace_id", frame.TraceID, "err", err)
		return nil, err
	}

	s.lastImage = encoded
	s.log.Info("frame captured",
		"session", s.id,
		"trace_id", frame.TraceID,
		"resolution", fmt.Sprintf("%dx%d", frame.Width, frame.Height),
		"bytes", len(encoded),
	)
	return encoded, nil
}

// releaseLocked closes and drops the held device, if any. Callers hold s.mu.
func (s *Session) releaseLocked() {
	if s.device == nil {
		return
	}
	if err := s.device.Close(); err != nil {
		s.log.Warn("device close failed", "session", s.id, "err", err)
	}
	s.device = nil
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Facing returns the most recently requested facing direction.
func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

// LastImage returns the most recently captured encoded frame, or nil.
func (s *Session) LastImage() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastImage
}
