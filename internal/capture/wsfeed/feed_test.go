package wsfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/bearcats-racing/stockchecker/internal/capture"
)

var upgrader = websocket.Upgrader{}

// feedServer serves a websocket endpoint pushing the given frames.
func feedServer(t *testing.T, handler func(*websocket.Conn, *http.Request)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn, r)
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestOpenAndReadFrame(t *testing.T) {
	var gotFacing string
	feedURL := feedServer(t, func(conn *websocket.Conn, r *http.Request) {
		gotFacing = r.URL.Query().Get("facing")
		msg := frameMessage{Width: 2, Height: 2, Data: make([]byte, 16)}
		data, _ := json.Marshal(msg)
		conn.WriteMessage(websocket.TextMessage, data)
		// Hold the connection open until the client closes.
		conn.ReadMessage()
	})

	opener := &Opener{URL: feedURL}
	device, err := opener.Open(context.Background(), capture.FacingUser, capture.DefaultHint)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer device.Close()

	frame, err := device.ReadFrame(context.Background())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if frame.Width != 2 || frame.Height != 2 || len(frame.Data) != 16 {
		t.Errorf("unexpected frame: %dx%d, %d bytes", frame.Width, frame.Height, len(frame.Data))
	}
	if frame.TraceID == "" {
		t.Error("expected trace id assigned")
	}
	if gotFacing != "user" {
		t.Errorf("expected facing passed to feed, got %q", gotFacing)
	}
}

func TestOpenPermissionDenied(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	opener := &Opener{URL: "ws" + strings.TrimPrefix(server.URL, "http")}
	_, err := opener.Open(context.Background(), capture.FacingEnvironment, capture.DefaultHint)
	if !errors.Is(err, capture.ErrPermissionDenied) {
		t.Errorf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestOpenUnreachableFeed(t *testing.T) {
	opener := &Opener{URL: "ws://127.0.0.1:1/feed"}
	_, err := opener.Open(context.Background(), capture.FacingEnvironment, capture.DefaultHint)
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestOpenNoURL(t *testing.T) {
	opener := &Opener{}
	_, err := opener.Open(context.Background(), capture.FacingEnvironment, capture.DefaultHint)
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Errorf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestReadFrameTruncatedData(t *testing.T) {
	feedURL := feedServer(t, func(conn *websocket.Conn, r *http.Request) {
		msg := frameMessage{Width: 2, Height: 2, Data: make([]byte, 3)}
		data, _ := json.Marshal(msg)
		conn.WriteMessage(websocket.TextMessage, data)
		conn.ReadMessage()
	})

	opener := &Opener{URL: feedURL}
	device, err := opener.Open(context.Background(), capture.FacingEnvironment, capture.DefaultHint)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer device.Close()

	if _, err := device.ReadFrame(context.Background()); err == nil {
		t.Error("expected error for truncated frame data")
	}
}

func TestCloseIdempotent(t *testing.T) {
	feedURL := feedServer(t, func(conn *websocket.Conn, r *http.Request) {
		conn.ReadMessage()
	})

	opener := &Opener{URL: feedURL}
	device, err := opener.Open(context.Background(), capture.FacingEnvironment, capture.DefaultHint)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := device.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := device.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
