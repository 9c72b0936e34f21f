package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		count         int64
		wantAllowed   bool
		wantRemaining int
		wantRetry     time.Duration
	}{
		{1, true, 2, 0},
		{3, true, 0, 0},
		{4, false, 0, 20 * time.Second},
		{10, false, 0, 20 * time.Second},
	}

	for _, tt := range tests {
		d := decide(tt.count, 3, 20*time.Second)
		if d.Allowed != tt.wantAllowed || d.Remaining != tt.wantRemaining || d.RetryAfter != tt.wantRetry {
			t.Errorf("decide(%d) = %+v", tt.count, d)
		}
		if d.Limit != 3 {
			t.Errorf("decide(%d) limit = %d, want 3", tt.count, d.Limit)
		}
	}
}

func TestWindowKey(t *testing.T) {
	start := time.Date(2025, 5, 12, 16, 30, 0, 0, time.UTC)
	if got := windowKey("alice:cluster", start); got != "panel:rl:alice:cluster:202505121630" {
		t.Errorf("windowKey() = %q", got)
	}
}

func TestNoopAllows(t *testing.T) {
	d, err := Noop{}.Allow(context.Background(), "anyone")
	if err != nil || !d.Allowed {
		t.Errorf("Noop.Allow() = %+v, %v", d, err)
	}
}
