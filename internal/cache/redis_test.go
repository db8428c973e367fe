package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

type redisItem struct {
	Name  string `json:"name"`
	Stars int    `json:"stars"`
}

// TestRedis_RoundTrip needs a live server; set REDIS_ADDR to run it.
func TestRedis_RoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	rdb, err := Dial(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	prefix := "ghinline-test-" + uuid.NewString() + ":"
	c := NewRedis[[]redisItem](rdb, prefix, "list", time.Second, nil)

	want := []redisItem{{Name: "go", Stars: 120000}}
	c.Set(ctx, "user:golang", want)

	got, ok := c.Get(ctx, "user:golang")
	if !ok {
		t.Fatal("expected hit")
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("Get = %+v, want %+v", got, want)
	}

	ttl, err := rdb.TTL(ctx, prefix+"list:user:golang").Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Second {
		t.Errorf("key TTL = %v, want (0, 1s]", ttl)
	}

	if _, ok := c.Get(ctx, "user:absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestDial_Unreachable(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if _, err := Dial(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected error dialing closed port")
	}
}
