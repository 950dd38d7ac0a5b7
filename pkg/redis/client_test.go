package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	values  map[string]string
	counts  map[string]int64
	expired map[string]time.Duration
}

func newStubStore() *stubStore {
	return &stubStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expired: map[string]time.Duration{},
	}
}

func (s *stubStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (s *stubStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	s.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubStore) Get(ctx context.Context, key string) *redis.StringCmd {
	val, ok := s.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (s *stubStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := s.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	s.values[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

func (s *stubStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	s.counts[key]++
	return redis.NewIntResult(s.counts[key], nil)
}

func (s *stubStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	s.expired[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (s *stubStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := s.values[key]; ok {
			delete(s.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestBuildKeyNamespacing(t *testing.T) {
	c := &Client{store: newStubStore()}

	if got := c.AccessSessionKey("abc"); got != "ac:session:access:abc" {
		t.Fatalf("unexpected session key: %s", got)
	}
	if got := c.SnapshotKey("cart", "user-1"); got != "ac:snapshot:cart:user-1" {
		t.Fatalf("unexpected snapshot key: %s", got)
	}
	if got := c.RateLimitKey("login:ip:1.2.3.4"); got != "ac:rate_limit:login:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key: %s", got)
	}
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	c := &Client{store: newStubStore()}

	if err := c.Set(ctx, "ac:test", "value", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "ac:test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "value" {
		t.Fatalf("expected value, got %s", got)
	}
	if err := c.Del(ctx, "ac:test"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := c.Get(ctx, "ac:test"); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	stub := newStubStore()
	c := &Client{store: stub}

	for i := 0; i < 3; i++ {
		allowed, _, err := c.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	allowed, count, err := c.FixedWindowAllow(ctx, "login:ip:10.0.0.1", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Fatal("fourth request should be blocked")
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
	if ttl := stub.expired[c.RateLimitKey("login:ip:10.0.0.1")]; ttl != time.Minute {
		t.Fatalf("expected window TTL set on first increment, got %v", ttl)
	}
}

func TestUninitializedClient(t *testing.T) {
	ctx := context.Background()
	c := &Client{}

	if err := c.Set(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := c.Get(ctx, "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := c.Ping(ctx); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on empty client should be nil, got %v", err)
	}
}
