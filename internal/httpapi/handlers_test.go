package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/runstore"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simservice"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/telemetry"
)

const testNetworkYAML = `
stations: [1, 2]
charging_station: 2
edges:
  - {from: 1, to: 2, weight: 10}
fleet:
  - {id: agv_1, start_station: 1}
`

func setupTestHandler() *Handler {
	store := runstore.NewMemoryRunStore()
	svc := simservice.New(store, telemetry.NewStreamer(nil, ""))
	return NewHandler(svc, nil)
}

func TestHandler_Health(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.Health(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestHandler_SubmitRun_Success(t *testing.T) {
	handler := setupTestHandler()

	body := submitRunRequest{PayloadCSV: "p1,1,2,3.0,1,0\n", NetworkYAML: testNetworkYAML}
	jsonData, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/runs", bytes.NewBuffer(jsonData))
	rr := httptest.NewRecorder()

	handler.SubmitRun(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var run runstore.RunSummary
	json.NewDecoder(rr.Body).Decode(&run)
	if run.DeliveredCount != 1 {
		t.Errorf("DeliveredCount = %d, want 1", run.DeliveredCount)
	}
}

func TestHandler_SubmitRun_InvalidInputReturnsBadRequest(t *testing.T) {
	handler := setupTestHandler()

	body := submitRunRequest{PayloadCSV: "p1,1,99,3.0,1,0\n", NetworkYAML: testNetworkYAML}
	jsonData, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/runs", bytes.NewBuffer(jsonData))
	rr := httptest.NewRecorder()

	handler.SubmitRun(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestHandler_GetRun_NotFound(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/runs/nonexistent", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "nonexistent"})
	rr := httptest.NewRecorder()

	handler.GetRun(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestHandler_ListRuns_Empty(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/runs", nil)
	rr := httptest.NewRecorder()

	handler.ListRuns(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestHandler_Feed_EmptyWhenNoFeedConfigured(t *testing.T) {
	handler := setupTestHandler()

	req := httptest.NewRequest("GET", "/feed", nil)
	rr := httptest.NewRecorder()
	handler.Feed(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var events []telemetry.MoveEvent
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("failed to decode feed response: %v", err)
	}
	if events == nil {
		t.Fatal("expected an empty array, got null")
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestHandler_Feed_ReturnsRecentEvents(t *testing.T) {
	store := runstore.NewMemoryRunStore()
	svc := simservice.New(store, telemetry.NewStreamer(nil, ""))
	feed := telemetry.NewFeed(10)
	handler := NewHandler(svc, feed)

	want := telemetry.MoveEvent{AGVID: "agv_1", FromStation: 1, ToStation: 2, Minute: 5}
	feed.Push(want)

	req := httptest.NewRequest("GET", "/feed", nil)
	rr := httptest.NewRecorder()
	handler.Feed(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var events []telemetry.MoveEvent
	if err := json.NewDecoder(rr.Body).Decode(&events); err != nil {
		t.Fatalf("failed to decode feed response: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].AGVID != want.AGVID || events[0].Minute != want.Minute {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}
}

func TestCORSMiddleware_HandlesOptions(t *testing.T) {
	wrapped := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest("OPTIONS", "/runs", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
