package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/docblog/internal/http/handlers"
)

func TestReadyz(t *testing.T) {
	up := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("unreachable") }

	tests := []struct {
		name           string
		checks         map[string]handlers.PingFunc
		wantStatusCode int
		wantChecks     map[string]string
	}{
		{name: "no_dependencies", checks: nil, wantStatusCode: http.StatusOK, wantChecks: map[string]string{}},
		{name: "all_up", checks: map[string]handlers.PingFunc{"db": up, "redis": up}, wantStatusCode: http.StatusOK, wantChecks: map[string]string{"db": "up", "redis": "up"}},
		{name: "redis_down", checks: map[string]handlers.PingFunc{"db": up, "redis": down}, wantStatusCode: http.StatusServiceUnavailable, wantChecks: map[string]string{"db": "up", "redis": "down"}},
		{name: "nil_check_skipped", checks: map[string]handlers.PingFunc{"db": nil}, wantStatusCode: http.StatusOK, wantChecks: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(tt.checks)
			r := setupRouter(http.MethodGet, "/readyz", nil, h.Readyz)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d", w.Code, tt.wantStatusCode)
			}

			var body struct {
				Checks map[string]string `json:"checks"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(body.Checks) != len(tt.wantChecks) {
				t.Fatalf("got checks %v, want %v", body.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if body.Checks[k] != v {
					t.Fatalf("check %s = %q, want %q", k, body.Checks[k], v)
				}
			}
		})
	}
}

func TestIndex(t *testing.T) {
	r := setupRouter(http.MethodGet, "/", nil, handlers.Index)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if env := decode(t, w); !env.Success || env.Message != "Doctor-Patient Blog API is running!" {
		t.Fatalf("unexpected banner: %+v", env)
	}
}
