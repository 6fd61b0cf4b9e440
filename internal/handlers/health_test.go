package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saltmarsh-games/worldengine/internal/services"
)

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHealthHandler(testStorage(), services.NewMockNarrator(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected healthy status, got %q", resp.Status)
	}
	if resp.Components["storage"] != "healthy" {
		t.Errorf("Expected healthy storage, got %v", resp.Components["storage"])
	}
	if resp.Components["narrator"] != "healthy" {
		t.Errorf("Expected healthy narrator, got %v", resp.Components["narrator"])
	}
}

func TestHealthHandler_DegradedStorage(t *testing.T) {
	ms := testStorage()
	ms.SetPingError(errors.New("connection refused"))
	handler := NewHealthHandler(ms, services.NewMockNarrator(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", rr.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "degraded" {
		t.Errorf("Expected degraded status, got %q", resp.Status)
	}
	if resp.Components["storage"] != "unhealthy" {
		t.Errorf("Expected unhealthy storage, got %v", resp.Components["storage"])
	}
}
