package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/Movrr-Official/movrr-sub001/internal/ratelimit"
)

func TestLimiter_BlocksAfterMaxWithinWindow(t *testing.T) {
	lim := ratelimit.New(ratelimit.NewMemoryStore(), "api", 3, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		d := lim.Check(ctx, "10.0.0.1")
		if !d.Allowed {
			t.Fatalf("request #%d should be allowed", i)
		}
		if d.Remaining != 3-i {
			t.Errorf("request #%d Remaining = %d, want %d", i, d.Remaining, 3-i)
		}
	}

	d := lim.Check(ctx, "10.0.0.1")
	if d.Allowed {
		t.Fatal("request #4 should be blocked")
	}
	if d.Remaining != 0 {
		t.Errorf("blocked Remaining = %d, want 0", d.Remaining)
	}
	if d.RetryAfter <= 0 {
		t.Errorf("blocked RetryAfter = %s, want > 0", d.RetryAfter)
	}
}

func TestLimiter_FreshWindowAfterReset(t *testing.T) {
	lim := ratelimit.New(ratelimit.NewMemoryStore(), "api", 1, 20*time.Millisecond)
	ctx := context.Background()

	if d := lim.Check(ctx, "k"); !d.Allowed {
		t.Fatal("first request should be allowed")
	}
	if d := lim.Check(ctx, "k"); d.Allowed {
		t.Fatal("second request within window should be blocked")
	}

	time.Sleep(40 * time.Millisecond)

	d := lim.Check(ctx, "k")
	if !d.Allowed {
		t.Fatal("request after resetTime should start a fresh window")
	}
	if d.Remaining != 0 {
		t.Errorf("fresh window Remaining = %d, want 0 (max=1, one used)", d.Remaining)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	lim := ratelimit.New(ratelimit.NewMemoryStore(), "api", 1, time.Minute)
	ctx := context.Background()

	if d := lim.Check(ctx, "alice"); !d.Allowed {
		t.Fatal("alice's first request should be allowed")
	}
	if d := lim.Check(ctx, "alice"); d.Allowed {
		t.Fatal("alice's second request should be blocked")
	}
	if d := lim.Check(ctx, "bob"); !d.Allowed {
		t.Fatal("bob must not be affected by alice's window")
	}
}

func TestLimiter_ScopesAreIndependent(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	api := ratelimit.New(store, "api", 1, time.Minute)
	forms := ratelimit.New(store, "forms", 1, time.Minute)
	ctx := context.Background()

	if d := api.Check(ctx, "k"); !d.Allowed {
		t.Fatal("api scope first request should be allowed")
	}
	if d := forms.Check(ctx, "k"); !d.Allowed {
		t.Fatal("forms scope must count separately from api scope")
	}
}

func TestMemoryStore_SweepRemovesOnlyExpired(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	if _, _, err := store.Incr(ctx, "short", 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.Incr(ctx, "long", time.Minute); err != nil {
		t.Fatal(err)
	}

	time.Sleep(25 * time.Millisecond)
	store.Sweep()

	if got := store.Len(); got != 1 {
		t.Errorf("after sweep Len = %d, want 1 (only the live window)", got)
	}

	// The surviving window kept its count.
	count, _, err := store.Incr(ctx, "long", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("live window count = %d, want 2", count)
	}
}

func TestMemoryStore_ResetAtStableWithinWindow(t *testing.T) {
	store := ratelimit.NewMemoryStore()
	ctx := context.Background()

	_, first, err := store.Incr(ctx, "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	_, second, err := store.Incr(ctx, "k", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("resetAt moved within one window: %s vs %s", first, second)
	}
}
