package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lixenwraith/forager/store"
	"github.com/lixenwraith/forager/trial"
)

// mockDB serves a fixed set of trials
type mockDB struct {
	trials    []store.Trial
	clicks    map[string][]store.Click
	err       error
	lastLimit int
}

func (m *mockDB) Close() error                      { return nil }
func (m *mockDB) Migrate() error                    { return nil }
func (m *mockDB) SaveResult(res trial.Result) error { return nil }

func (m *mockDB) ListTrials(limit int) ([]store.Trial, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.trials, nil
}

func (m *mockDB) GetTrial(id string) (*store.Trial, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.trials {
		if m.trials[i].ID == id {
			return &m.trials[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockDB) ListClicks(id string) ([]store.Click, error) {
	if _, err := m.GetTrial(id); err != nil {
		return nil, err
	}
	return m.clicks[id], nil
}

func newMock() *mockDB {
	return &mockDB{
		trials: []store.Trial{
			{ID: "t-1", Name: "berries", Score: 7, StartedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)},
		},
		clicks: map[string][]store.Click{
			"t-1": {{Seq: 0, TrialID: "t-1", Button: "left", Kind: "single", Hit: true}},
		},
	}
}

func serve(t *testing.T, db store.DB, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	NewServer(db, nil).Routes().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := serve(t, newMock(), "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Status = %q", resp.Status)
	}
}

func TestListTrials(t *testing.T) {
	db := newMock()
	w := serve(t, db, "/api/v1/trials?limit=1000")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var resp TrialsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Trials[0].ID != "t-1" {
		t.Errorf("Unexpected response: %+v", resp)
	}
	if db.lastLimit != MaxListLimit {
		t.Errorf("Limit = %d, want capped %d", db.lastLimit, MaxListLimit)
	}
}

func TestListTrialsBadLimit(t *testing.T) {
	for _, q := range []string{"abc", "0", "-3"} {
		w := serve(t, newMock(), "/api/v1/trials?limit="+q)
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s: expected 400, got %d", q, w.Code)
		}
	}
}

func TestGetTrial(t *testing.T) {
	w := serve(t, newMock(), "/api/v1/trials/t-1")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var tr store.Trial
	if err := json.NewDecoder(w.Body).Decode(&tr); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if tr.Name != "berries" || tr.Score != 7 {
		t.Errorf("Unexpected trial: %+v", tr)
	}
}

func TestUnknownTrial(t *testing.T) {
	for _, path := range []string{"/api/v1/trials/nope", "/api/v1/trials/nope/clicks"} {
		w := serve(t, newMock(), path)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
			continue
		}
		var resp ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode error: %v", err)
		}
		if resp.Error == "" || resp.RequestID == "" {
			t.Errorf("%s: incomplete error body %+v", path, resp)
		}
	}
}

func TestListClicks(t *testing.T) {
	w := serve(t, newMock(), "/api/v1/trials/t-1/clicks")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp ClicksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.TrialID != "t-1" || len(resp.Clicks) != 1 || !resp.Clicks[0].Hit {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestStoreFailure(t *testing.T) {
	db := newMock()
	db.err = errors.New("disk gone")
	w := serve(t, db, "/api/v1/trials/t-1")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", w.Code)
	}
}

func TestAgainstSQLiteStore(t *testing.T) {
	db, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := db.SaveResult(trial.Result{ID: "abc", Name: "live", StartedAt: time.Now(), Score: 3}); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	w := serve(t, db, "/api/v1/trials")
	var resp TrialsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Count != 1 || resp.Trials[0].ID != "abc" || resp.Trials[0].Score != 3 {
		t.Errorf("Unexpected response: %+v", resp)
	}

	w = serve(t, db, "/api/v1/trials/abc/clicks")
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for trial without clicks, got %d", w.Code)
	}
}
