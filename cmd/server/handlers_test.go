package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"zoomdive/internal/config"
	"zoomdive/internal/store"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return setupRouter(&server{st: st, cfg: &config.Config{Workers: 2}})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateJob_InvalidParams(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"no centers", map[string]any{
			"zoom": []float64{0.5}, "n_zooms": 2, "n_samples": 8,
			"n_iterations": 10, "divergence_limit": 2.0,
		}},
		{"mismatched zoom list", map[string]any{
			"centers": [][2]float64{{0, 0}, {-1, 0}}, "zoom": []float64{0.5, 0.5, 0.5},
			"n_zooms": 2, "n_samples": 8, "n_iterations": 10, "divergence_limit": 2.0,
		}},
		{"zero iterations", map[string]any{
			"centers": [][2]float64{{0, 0}}, "zoom": []float64{0.5},
			"n_zooms": 2, "n_samples": 8, "n_iterations": 0, "divergence_limit": 2.0,
		}},
		{"negative limit", map[string]any{
			"centers": [][2]float64{{0, 0}}, "zoom": []float64{0.5},
			"n_zooms": 2, "n_samples": 8, "n_iterations": 10, "divergence_limit": -1.0,
		}},
		{"unknown palette", map[string]any{
			"centers": [][2]float64{{0, 0}}, "zoom": []float64{0.5},
			"n_zooms": 2, "n_samples": 8, "n_iterations": 10, "divergence_limit": 2.0,
			"palette": "neon",
		}},
	}
	for _, tt := range tests {
		if w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", tt.body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", tt.name, w.Code)
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/jobs", map[string]any{
		"centers":          [][2]float64{{-0.75, 0.1}},
		"zoom":             []float64{0.5},
		"n_zooms":          2,
		"n_samples":        16,
		"n_iterations":     20,
		"divergence_limit": 2.0,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", w.Code, w.Body)
	}
	var created struct {
		ID         int64 `json:"id"`
		TotalViews int   `json:"total_views"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.TotalViews != 2 {
		t.Fatalf("total views = %d, want 2", created.TotalViews)
	}

	// the scheduler runs in the background; wait for the job to finish
	deadline := time.Now().Add(10 * time.Second)
	var status struct {
		Status   string `json:"status"`
		Finished int    `json:"finished_views"`
	}
	for {
		w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/1", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("get job: status %d", w.Code)
		}
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if status.Status == store.StatusDone || status.Status == store.StatusFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %q after deadline", status.Status)
		}
		time.Sleep(20 * time.Millisecond)
	}
	if status.Status != store.StatusDone || status.Finished != 2 {
		t.Fatalf("final job state: %+v", status)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/1/views", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list views: status %d", w.Code)
	}
	var list struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode views: %v", err)
	}
	if list.Count != 2 {
		t.Fatalf("view count = %d, want 2", list.Count)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/1/views/0", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get view: status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type %q, want image/png", ct)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("body is not a PNG")
	}

	if w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/1/views/9", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing view: status %d, want 404", w.Code)
	}
	if w = doJSON(t, r, http.MethodGet, "/api/v1/jobs/999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing job: status %d, want 404", w.Code)
	}
}
