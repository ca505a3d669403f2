package server

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestRateLimiter_InProcessWindow(t *testing.T) {
	l := NewRateLimiter("", 2)
	ctx := context.Background()

	if !l.Allow(ctx, "client-a") || !l.Allow(ctx, "client-a") {
		t.Fatal("First two requests must pass")
	}
	if l.Allow(ctx, "client-a") {
		t.Error("Third request in the window must be rejected")
	}
	if !l.Allow(ctx, "client-b") {
		t.Error("Another client must have its own window")
	}
}

func TestRateLimiter_DisabledAllowsAll(t *testing.T) {
	l := NewRateLimiter("", 0)
	for range 100 {
		if !l.Allow(context.Background(), "any") {
			t.Fatal("Disabled limiter must always allow")
		}
	}
}

func TestRateLimiter_RedisWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	l := NewRateLimiter(mr.Addr(), 2)
	if l.rdb == nil {
		t.Fatal("Expected the redis path with a reachable server")
	}
	ctx := context.Background()

	if !l.Allow(ctx, "client-a") || !l.Allow(ctx, "client-a") {
		t.Fatal("First two requests must pass")
	}
	if l.Allow(ctx, "client-a") {
		t.Error("Third request in the window must be rejected")
	}
}

func TestRateLimiter_RedisUnreachableFallsBack(t *testing.T) {
	l := NewRateLimiter("127.0.0.1:1", 2)
	if l.rdb == nil {
		// Expected: the limiter degraded to in-process windows.
		if !l.Allow(context.Background(), "client-a") {
			t.Error("Fallback limiter must still serve")
		}
		return
	}
	t.Error("Unreachable redis must not leave a client configured")
}
