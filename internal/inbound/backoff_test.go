package inbound

import (
	"context"
	"testing"
	"time"
)

func TestBackoff_Next(t *testing.T) {
	b := newBackoff(100*time.Millisecond, 300*time.Millisecond)

	wantBase := []time.Duration{100, 200, 300, 300}
	for i, base := range wantBase {
		base *= time.Millisecond
		d := b.next()
		lo, hi := time.Duration(float64(base)*0.8), time.Duration(float64(base)*1.2)
		if d < lo || d > hi {
			t.Errorf("next() #%d = %v, want within [%v, %v]", i, d, lo, hi)
		}
	}
}

func TestBackoff_WaitCancelled(t *testing.T) {
	b := newBackoff(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.wait(ctx); err != context.Canceled {
		t.Errorf("wait() = %v, want context.Canceled", err)
	}
}
