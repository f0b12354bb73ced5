package orm

import (
	"errors"
	"testing"

	"github.com/geocoder89/docblog/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve_RecordsDBMetrics(t *testing.T) {
	prom := observability.NewProm(prometheus.NewRegistry())

	if err := observe(prom, "posts.get", func() error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	boom := errors.New("connection reset")
	if err := observe(prom, "posts.list", func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("got %v, want the wrapped call's error", err)
	}

	if got := testutil.ToFloat64(prom.DbErrorsTotal.WithLabelValues("posts.list", "connection")); got != 1 {
		t.Fatalf("got %v errors recorded, want 1", got)
	}
	if n := testutil.CollectAndCount(prom.DbQueryDuration); n != 2 {
		t.Fatalf("got %d duration series, want 2", n)
	}
}

func TestObserve_NilPromPassesThrough(t *testing.T) {
	called := false
	err := observe(nil, "posts.get", func() error {
		called = true
		return nil
	})
	if err != nil || !called {
		t.Fatalf("call not passed through: err=%v called=%v", err, called)
	}
}
