package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(max int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(max, window)
	l.now = clock.Now
	return l, clock
}

func TestCheck_AllowsUpToLimit(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)

	for i := 1; i <= 3; i++ {
		d := l.Check("alice")
		if !d.Allowed {
			t.Fatalf("Request %d should be allowed", i)
		}
		if d.Remaining != 3-i {
			t.Errorf("Request %d: expected remaining %d, got %d", i, 3-i, d.Remaining)
		}
	}

	clock.Advance(20 * time.Second)
	d := l.Check("alice")
	if d.Allowed || d.Remaining != 0 {
		t.Errorf("Expected 4th request to be rejected, got %+v", d)
	}
	if d.ResetAfter != 40*time.Second {
		t.Errorf("Expected reset after 40s, got %v", d.ResetAfter)
	}
}

func TestCheck_IdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	if !l.Check("alice").Allowed {
		t.Fatal("alice should be allowed")
	}
	if !l.Check("bob").Allowed {
		t.Error("bob should not be limited by alice")
	}
	if l.Check("alice").Allowed {
		t.Error("alice should be limited")
	}
}

func TestCheck_WindowResets(t *testing.T) {
	l, clock := newTestLimiter(1, time.Minute)

	l.Check("alice")
	clock.Advance(time.Minute)
	if l.Check("alice").Allowed {
		t.Error("Window boundary itself should still be limited")
	}

	clock.Advance(time.Millisecond)
	d := l.Check("alice")
	if !d.Allowed || d.ResetAfter != time.Minute {
		t.Errorf("Expected fresh window, got %+v", d)
	}
}

func TestSweep_DropsIdleIdentities(t *testing.T) {
	l, clock := newTestLimiter(5, time.Minute)

	l.Check("idle")
	clock.Advance(90 * time.Second)
	l.Check("active")
	clock.Advance(31 * time.Second)

	if removed := l.Sweep(); removed != 1 {
		t.Errorf("Expected 1 removed entry, got %d", removed)
	}
	if l.size() != 1 {
		t.Errorf("Expected 1 remaining entry, got %d", l.size())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	l := New(1, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestCheck_Concurrent(t *testing.T) {
	l := New(50, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Check("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed requests, got %d", allowed)
	}
}
