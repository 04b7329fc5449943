package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONWritesSuccessEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)

	JSON(rr, req, http.StatusOK, map[string]any{"id": "u-1"})

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	var env map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env["success"] != true {
		t.Fatalf("expected success=true, got %v", env["success"])
	}
	data, _ := env["data"].(map[string]any)
	if data["id"] != "u-1" {
		t.Fatalf("unexpected data %v", env["data"])
	}
	if _, ok := env["error"]; ok {
		t.Fatal("success envelope must not carry an error object")
	}
}

func TestErrorWritesFailureEnvelope(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/admin/reports/r-1", nil)

	Error(rr, req, http.StatusBadRequest, "BAD_REQUEST", "invalid status", map[string]any{"status": "unknown"})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var env Envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
	if env.Error == nil || env.Error.Code != "BAD_REQUEST" {
		t.Fatalf("unexpected error detail %+v", env.Error)
	}
	if env.Error.Message != "invalid status" {
		t.Fatalf("unexpected message %q", env.Error.Message)
	}
	details, _ := env.Error.Details.(map[string]any)
	if details["status"] != "unknown" {
		t.Fatalf("unexpected details %v", env.Error.Details)
	}
}

func TestJSONWithNilDataStillDecodes(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)

	JSON(rr, req, http.StatusOK, nil)

	var env Envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !env.Success {
		t.Fatal("expected success=true")
	}
}
