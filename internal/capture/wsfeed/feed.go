// Package wsfeed implements a capture device backed by a websocket frame
// feed. A companion capture page (or a camera bridge) pushes raw frames over
// the socket; this side owns the connection as the stream handle.
package wsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bearcats-racing/stockchecker/internal/capture"
)

// defaultReadDeadline bounds a single frame read when the caller's context
// carries no deadline. A feed that stops pushing frames must not hang the
// capture path indefinitely.
const defaultReadDeadline = 10 * time.Second

// Opener dials a websocket frame feed and yields it as a capture.Device.
type Opener struct {
	// URL is the ws:// or wss:// feed endpoint.
	URL string
	// Dialer defaults to websocket.DefaultDialer.
	Dialer *websocket.Dialer
}

// Open dials the feed, passing the facing preference and resolution hint as
// query parameters. Handshake rejections map onto the capture error taxonomy.
func (o *Opener) Open(ctx context.Context, facing capture.Facing, hint capture.Hint) (capture.Device, error) {
	if o.URL == "" {
		return nil, fmt.Errorf("%w: no feed URL configured", capture.ErrDeviceUnavailable)
	}

	u, err := url.Parse(o.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid feed URL: %v", capture.ErrDeviceUnavailable, err)
	}
	q := u.Query()
	q.Set("facing", string(facing))
	if hint.Width > 0 {
		q.Set("width", strconv.Itoa(hint.Width))
	}
	if hint.Height > 0 {
		q.Set("height", strconv.Itoa(hint.Height))
	}
	u.RawQuery = q.Encode()

	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, fmt.Errorf("%w: feed returned %d", capture.ErrPermissionDenied, resp.StatusCode)
			}
			return nil, fmt.Errorf("%w: handshake failed with %d", capture.ErrAcquisitionFailed, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	}

	return &device{conn: conn}, nil
}

// frameMessage is the wire format pushed by the feed. Data carries base64
// RGBA pixels (encoding/json handles the base64 for []byte).
type frameMessage struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   []byte `json:"data"`
}

type device struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (d *device) ReadFrame(ctx context.Context) (capture.Frame, error) {
	deadline := time.Now().Add(defaultReadDeadline)
	if ctxDeadline, ok := ctx.Deadline(); ok {
		deadline = ctxDeadline
	}
	if err := d.conn.SetReadDeadline(deadline); err != nil {
		return capture.Frame{}, fmt.Errorf("setting read deadline: %w", err)
	}

	_, data, err := d.conn.ReadMessage()
	if err != nil {
		return capture.Frame{}, fmt.Errorf("reading frame message: %w", err)
	}

	var msg frameMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return capture.Frame{}, fmt.Errorf("decoding frame message: %w", err)
	}
	if len(msg.Data) != msg.Width*msg.Height*4 {
		return capture.Frame{}, fmt.Errorf("frame data is %d bytes, want %d for %dx%d",
			len(msg.Data), msg.Width*msg.Height*4, msg.Width, msg.Height)
	}

	return capture.Frame{
		Width:     msg.Width,
		Height:    msg.Height,
		Data:      msg.Data,
		Timestamp: time.Now(),
		TraceID:   uuid.New().String(),
	}, nil
}

func (d *device) Close() error {
	d.closeOnce.Do(func() {
		// Best-effort close handshake, then drop the connection.
		d.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		d.closeErr = d.conn.Close()
	})
	return d.closeErr
}
