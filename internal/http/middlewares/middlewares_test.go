package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/docblog/internal/actorctx"
	"github.com/geocoder89/docblog/internal/auth"
	"github.com/geocoder89/docblog/internal/domain/user"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(ctx context.Context, token string) (user.Identity, error)
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (user.Identity, error) {
	if f.verifyFn != nil {
		return f.verifyFn(ctx, token)
	}
	return user.Identity{}, auth.ErrInvalidToken
}

func doctorVerifier() *fakeVerifier {
	return &fakeVerifier{verifyFn: func(_ context.Context, token string) (user.Identity, error) {
		switch token {
		case "doctor-token":
			return user.Identity{UserID: 1, Role: user.RoleDoctor}, nil
		case "patient-token":
			return user.Identity{UserID: 2, Role: user.RolePatient}, nil
		case "broken-store":
			return user.Identity{}, errors.New("db down")
		}
		return user.Identity{}, auth.ErrInvalidToken
	}}
}

type envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Code      string `json:"code"`
	RequestID string `json:"requestId"`
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "missing_header", header: "", wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "wrong_scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "invalid_token", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "verifier_failure", header: "Bearer broken-store", wantStatus: http.StatusInternalServerError, wantCode: "internal_error"},
		{name: "valid", header: "Bearer doctor-token", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewAuthMiddleware(doctorVerifier())

			r := gin.New()
			r.Use(RequestID())
			r.GET("/private", m.RequireAuth(), func(c *gin.Context) {
				id, ok := IdentityFromContext(c)
				fromCtx, ok2 := actorctx.IdentityFrom(c.Request.Context())
				if !ok || !ok2 || id != fromCtx {
					c.Status(http.StatusTeapot)
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantCode == "" {
				return
			}

			var resp envelope
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Success || resp.Code != tt.wantCode || resp.RequestID == "" {
				t.Fatalf("unexpected envelope: %+v", resp)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(doctorVerifier())

	r := gin.New()
	r.GET("/maybe", m.OptionalAuth(), func(c *gin.Context) {
		if _, ok := IdentityFromContext(c); ok {
			c.String(http.StatusOK, "known")
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	for header, want := range map[string]string{
		"":                    "anonymous",
		"Bearer garbage":      "anonymous",
		"Bearer doctor-token": "known",
	} {
		req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("header %q: got %d %q, want %q", header, w.Code, w.Body.String(), want)
		}
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(doctorVerifier())

	r := gin.New()
	r.POST("/posts", m.RequireAuth(), m.RequireRole(user.RoleDoctor), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	cases := map[string]int{
		"doctor-token":  http.StatusCreated,
		"patient-token": http.StatusForbidden,
	}
	for token, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != want {
			t.Fatalf("%s: got %d, want %d", token, w.Code, want)
		}
	}
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl := NewRateLimiter(NewMemoryCounter(), "auth", 2, time.Minute, nil)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") == "" {
			t.Fatalf("missing Retry-After header")
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// another client has its own window
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("second client limited: %d", w.Code)
	}
}

type failingCounter struct{}

func (failingCounter) Incr(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("redis unreachable")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl := NewRateLimiter(failingCounter{}, "auth", 1, time.Minute, nil)

	r := gin.New()
	r.POST("/login", rl.RateLimiterMiddleware(KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, w.Code)
		}
	}
}

func TestMemoryCounter_WindowResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }

	for i := int64(1); i <= 3; i++ {
		n, _, _ := m.Incr(context.Background(), "k", time.Minute)
		if n != i {
			t.Fatalf("count = %d, want %d", n, i)
		}
	}

	now = now.Add(2 * time.Minute)
	if n, left, _ := m.Incr(context.Background(), "k", time.Minute); n != 1 || left != time.Minute {
		t.Fatalf("after window: n=%d left=%v", n, left)
	}
}

func TestMemoryCounter_SweepsExpiredBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryCounter()
	m.now = func() time.Time { return now }

	for _, key := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		_, _, _ = m.Incr(context.Background(), key, time.Minute)
	}
	if len(m.clients) != 3 {
		t.Fatalf("buckets = %d, want 3", len(m.clients))
	}

	now = now.Add(2 * time.Minute)
	if n, _, _ := m.Incr(context.Background(), "10.0.0.4", time.Minute); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}

	if len(m.clients) != 1 {
		t.Fatalf("expired buckets kept: %d left", len(m.clients))
	}
	if _, ok := m.clients["10.0.0.4"]; !ok {
		t.Fatalf("live bucket was dropped")
	}
}

func TestRequestLogger_AttachesUserID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	m := NewAuthMiddleware(doctorVerifier())

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/private", m.RequireAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name     string
		path     string
		header   string
		wantUser any
	}{
		{name: "authenticated", path: "/private", header: "Bearer doctor-token", wantUser: float64(1)},
		{name: "anonymous", path: "/public"},
		{name: "rejected_token", path: "/private", header: "Bearer nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(httptest.NewRecorder(), req)

			var rec map[string]any
			if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
				t.Fatalf("decode log line: %v (%s)", err, buf.String())
			}
			if rec["msg"] != "http_request" || rec["route"] != tt.path {
				t.Fatalf("unexpected log line: %v", rec)
			}

			got, ok := rec["user_id"]
			if tt.wantUser == nil {
				if ok {
					t.Fatalf("user_id logged for %s: %v", tt.name, got)
				}
				return
			}
			if got != tt.wantUser {
				t.Fatalf("user_id = %v, want %v", got, tt.wantUser)
			}
		})
	}
}

func TestRequireContentType(t *testing.T) {
	r := gin.New()
	r.POST("/posts", RequireContentType("application/json", "multipart/form-data"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	r.GET("/posts", RequireContentType("application/json"), func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		method string
		ct     string
		want   int
	}{
		{http.MethodPost, "application/json; charset=utf-8", http.StatusCreated},
		{http.MethodPost, "multipart/form-data; boundary=xyz", http.StatusCreated},
		{http.MethodPost, "text/plain", http.StatusUnsupportedMediaType},
		{http.MethodPost, "", http.StatusUnsupportedMediaType},
		{http.MethodGet, "", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, "/posts", strings.NewReader("{}"))
		if tc.ct != "" {
			req.Header.Set("Content-Type", tc.ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != tc.want {
			t.Fatalf("%s %q: got %d, want %d", tc.method, tc.ct, w.Code, tc.want)
		}
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("preflight: %d %v", w.Code, w.Header())
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("unknown origin must not be allowed")
	}
}
