package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bearcats-racing/stockchecker/internal/model"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(Options{BaseURL: server.URL})
}

func TestListItems(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/items" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]model.Record{
			{ID: "a1", Name: "Motor Controller", Category: model.CategoryElectronics, Quantity: 5},
			{ID: "b2", Name: "Battery Cell", Category: model.CategoryPower, Quantity: 120},
		})
	}))

	records, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "a1" || records[0].Quantity != 5 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
}

func TestListItemsEmptyBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))

	records, err := client.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if records == nil {
		t.Error("expected non-nil empty slice for null response")
	}
}

func TestCreateItem(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateItemRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Name != "Wheel Hub" || req.Quantity != 4 {
			t.Errorf("unexpected create body: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Record{
			ID: "c3", Name: req.Name, Category: req.Category, Quantity: req.Quantity,
		})
	}))

	record, err := client.CreateItem(context.Background(), CreateItemRequest{
		Name: "Wheel Hub", Category: model.CategoryMechanical, Quantity: 4,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if record.ID != "c3" {
		t.Errorf("expected server-assigned id, got %q", record.ID)
	}
}

func TestUpdateItemServerAuthoritative(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/items/a1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		// Server normalizes the quantity to a different value.
		json.NewEncoder(w).Encode(model.Record{ID: "a1", Name: "Motor Controller", Quantity: 10})
	}))

	record, err := client.UpdateItem(context.Background(), "a1", UpdateItemRequest{Quantity: 4})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if record.Quantity != 10 {
		t.Errorf("expected server-returned quantity 10, got %d", record.Quantity)
	}
}

func TestScanSendsBase64Image(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xee}
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Image string `json:"image"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		decoded, err := base64.StdEncoding.DecodeString(body.Image)
		if err != nil || string(decoded) != string(image) {
			t.Errorf("expected base64 image payload, got %q", body.Image)
		}
		json.NewEncoder(w).Encode(ScanResult{Name: "Motor Controller", Quantity: 1, RawText: "motor controller esc"})
	}))

	result, err := client.Scan(context.Background(), image)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.Name != "Motor Controller" {
		t.Errorf("unexpected scan result: %+v", result)
	}
}

func TestErrorMessagePassedVerbatim(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "name required"})
	}))

	_, err := client.CreateItem(context.Background(), CreateItemRequest{})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != "name required" {
		t.Errorf("expected verbatim server message, got %q", apiErr.Message)
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", apiErr.Status)
	}
}

func TestErrorWithoutJSONBody(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))

	_, err := client.ListItems(context.Background())
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusGatewayTimeout {
		t.Errorf("expected status 504, got %d", apiErr.Status)
	}
}

func TestNoBaseURL(t *testing.T) {
	client := New(Options{})
	_, err := client.ListItems(context.Background())
	if !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("expected ErrNoBaseURL, got %v", err)
	}
}
