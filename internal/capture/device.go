package capture

import (
	"context"
	"errors"
	"time"
)

// Capture failure taxonomy. Device openers map platform errors onto these so
// callers can distinguish "no camera" from "camera refused".
var (
	// ErrDeviceUnavailable means the platform exposes no capture capability.
	ErrDeviceUnavailable = errors.New("capture: no capture device available")
	// ErrPermissionDenied means the stream request was rejected by policy.
	ErrPermissionDenied = errors.New("capture: permission denied")
	// ErrAcquisitionFailed means stream acquisition failed for another reason.
	ErrAcquisitionFailed = errors.New("capture: stream acquisition failed")
	// ErrNoActiveStream means a frame was requested without an active session.
	ErrNoActiveStream = errors.New("capture: no active stream")
)

// Facing is the camera facing preference.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Opposite returns the other facing direction.
func (f Facing) Opposite() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// Hint is the target resolution preference passed to the device. Devices may
// deliver frames at a different resolution; frames carry their own size.
type Hint struct {
	Width  int
	Height int
}

// DefaultHint matches the 1280x720 preference of the original capture UI.
var DefaultHint = Hint{Width: 1280, Height: 720}

// Frame is a single raw video frame.
type Frame struct {
	// Width and Height in pixels.
	Width  int
	Height int
	// Data holds tightly packed RGBA pixels, len = Width*Height*4.
	Data []byte
	// Timestamp is when the frame was produced.
	Timestamp time.Time
	// TraceID identifies the frame across the pipeline.
	TraceID string
}

// Device is an acquired video stream. A Device is exclusively owned by the
// Session that opened it; no other component may hold a reference to it.
type Device interface {
	// ReadFrame returns the current frame. It blocks until a frame is
	// available or ctx is done.
	ReadFrame(ctx context.Context) (Frame, error)
	// Close releases the underlying stream. Must be safe to call more
	// than once.
	Close() error
}

// Opener acquires a Device for the given facing and resolution hint. An
// Opener that cannot acquire must return one of the capture errors above
// (possibly wrapped) and must not leak a partially acquired stream.
type Opener interface {
	Open(ctx context.Context, facing Facing, hint Hint) (Device, error)
}
