package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func newPresenceHarness(t *testing.T, ttl time.Duration) (*PresenceService, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := NewPresenceService(rdb, ttl, zerolog.Nop())
	clock := time.Now()
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func TestPresenceHeartbeatAndCount(t *testing.T) {
	svc, _ := newPresenceHarness(t, 60*time.Second)
	ctx := context.Background()

	if err := svc.Heartbeat(ctx, "session-a"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	if err := svc.Heartbeat(ctx, "session-b"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	// Repeat heartbeats extend, not duplicate.
	if err := svc.Heartbeat(ctx, "session-a"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	n, err := svc.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("count = %d (%v), want 2", n, err)
	}
}

// A client that disappears without calling Disconnect drops out of the count
// once its lease lapses. This is the whole point of server-enforced expiry.
func TestPresenceExpiryWithoutDisconnect(t *testing.T) {
	svc, clock := newPresenceHarness(t, 60*time.Second)
	ctx := context.Background()

	if err := svc.Heartbeat(ctx, "vanished"); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}

	*clock = clock.Add(61 * time.Second)

	n, err := svc.Count(ctx)
	if err != nil || n != 0 {
		t.Fatalf("count = %d (%v) after lease expiry, want 0", n, err)
	}

	removed, err := svc.Reap(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("reaped = %d (%v), want 1", removed, err)
	}
}

func TestPresenceHeartbeatKeepsLeaseAlive(t *testing.T) {
	svc, clock := newPresenceHarness(t, 60*time.Second)
	ctx := context.Background()

	svc.Heartbeat(ctx, "active")

	// Heartbeat every 30s across several TTL windows.
	for i := 0; i < 5; i++ {
		*clock = clock.Add(30 * time.Second)
		if err := svc.Heartbeat(ctx, "active"); err != nil {
			t.Fatalf("heartbeat %d: %v", i, err)
		}
	}

	n, _ := svc.Count(ctx)
	if n != 1 {
		t.Fatalf("count = %d for a heartbeating session, want 1", n)
	}
}

func TestPresenceDisconnectIsImmediate(t *testing.T) {
	svc, _ := newPresenceHarness(t, 60*time.Second)
	ctx := context.Background()

	svc.Heartbeat(ctx, "polite")
	if err := svc.Disconnect(ctx, "polite"); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	n, _ := svc.Count(ctx)
	if n != 0 {
		t.Fatalf("count = %d after disconnect, want 0", n)
	}
}
