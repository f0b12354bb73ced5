package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIncr_FixedWindow(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	c := New(Config{Addr: addr})
	defer c.Close()

	ctx := context.Background()
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	key := "test:ratelimit:" + uuid.NewString()
	defer c.Raw().Del(ctx, key)

	for i := int64(1); i <= 3; i++ {
		n, left, err := c.Incr(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != i {
			t.Fatalf("count = %d, want %d", n, i)
		}
		if left <= 0 || left > time.Minute {
			t.Fatalf("window left = %v", left)
		}
	}
}
