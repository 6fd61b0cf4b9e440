package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/saltmarsh-games/worldengine/pkg/validate"
	"github.com/saltmarsh-games/worldengine/pkg/world"
)

func TestWorldsHandler_List(t *testing.T) {
	handler := NewWorldsHandler(testStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var summaries []WorldSummary
	if err := json.NewDecoder(rr.Body).Decode(&summaries); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 world, got %d", len(summaries))
	}
	if summaries[0].Key != "manor" {
		t.Errorf("Expected key manor, got %q", summaries[0].Key)
	}
	if summaries[0].Name != "Test Manor" {
		t.Errorf("Expected name Test Manor, got %q", summaries[0].Name)
	}
	if summaries[0].Locations != 2 {
		t.Errorf("Expected 2 locations, got %d", summaries[0].Locations)
	}
}

func TestWorldsHandler_Get(t *testing.T) {
	handler := NewWorldsHandler(testStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/manor", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var summary WorldSummary
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if summary.Key != "manor" {
		t.Errorf("Expected key manor, got %q", summary.Key)
	}
}

func TestWorldsHandler_GetNotFound(t *testing.T) {
	handler := NewWorldsHandler(testStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/atlantis", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestWorldsHandler_Validate(t *testing.T) {
	ms := testStorage()
	broken := testWorld()
	broken.Locations["hall"].Exits["west"] = &world.Exit{To: "nowhere"}
	ms.AddWorld("broken", broken)

	handler := NewWorldsHandler(ms, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/broken/validate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var report validate.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !report.HasErrors() {
		t.Error("Expected the broken world's report to carry errors")
	}
}

func TestWorldsHandler_ValidateCleanWorld(t *testing.T) {
	handler := NewWorldsHandler(testStorage(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/worlds/manor/validate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var report validate.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if report.HasErrors() {
		t.Errorf("Expected no errors for the test world, got %v", report.Errors())
	}
}

func TestWorldsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewWorldsHandler(testStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/worlds", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
