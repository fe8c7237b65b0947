package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_PerHost(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "https://api.example.com/profiles/u1"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	// burst exhausted for this host, path does not matter
	if limiter.Allow("https://api.example.com/checkins?user_id=u1") {
		t.Error("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("https://other.example.com/profiles/u1") {
		t.Error("expected allow for another host")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 20; i++ {
		if !limiter.Allow("http://localhost:8080/profiles/u1") {
			t.Fatalf("request %d throttled with limiting disabled", i)
		}
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	_ = limiter.Allow("http://example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "http://example.com"); err == nil {
		t.Error("expected wait to fail when context expires first")
	}
}

func TestHostOf(t *testing.T) {
	host, err := hostOf("http://example.com:8080/foo")
	if err != nil {
		t.Fatalf("hostOf failed: %v", err)
	}
	if host != "example.com:8080" {
		t.Errorf("expected example.com:8080, got %s", host)
	}

	if _, err := hostOf("::invalid"); err == nil {
		t.Error("expected error for invalid URL")
	}
	if _, err := hostOf("/relative/path"); err == nil {
		t.Error("expected error for URL without host")
	}
}
