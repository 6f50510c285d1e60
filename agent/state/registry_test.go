package state

import (
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.GetOrCreate("s1")
	b := r.GetOrCreate("s1")
	if a != b {
		t.Fatal("same id must return the same session instance")
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", r.Len())
	}
}

func TestSessionIsolation(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	a := r.GetOrCreate("s1")
	b := r.GetOrCreate("s2")
	if a == b {
		t.Fatal("different ids must get different sessions")
	}

	a.Lock()
	a.AppendHistory(schema.UserMessage("my email is broken@"))
	if err := a.State.SetValidated(FieldEmail, "broken@", false, time.Now()); err != nil {
		t.Fatal(err)
	}
	a.Unlock()

	b.Lock()
	defer b.Unlock()
	if len(b.History) != 0 {
		t.Fatalf("session s2 history must stay empty, got %d messages", len(b.History))
	}
	if b.State.Email != "" || b.State.EmailValid {
		t.Fatal("session s2 state must be untouched by s1's validation failure")
	}
}

func TestConcurrentGetOrCreate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	const goroutines = 32

	var wg sync.WaitGroup
	sessions := make([]*Session, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = r.GetOrCreate("shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if sessions[i] != sessions[0] {
			t.Fatal("concurrent GetOrCreate must converge on one instance")
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", r.Len())
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	r := NewRegistry(
		WithIdleTTL(10*time.Minute),
		WithClock(func() time.Time { return clock }),
	)

	r.GetOrCreate("old")
	clock = now.Add(8 * time.Minute)
	r.GetOrCreate("fresh")

	clock = now.Add(15 * time.Minute)
	if evicted := r.Sweep(); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 surviving session, got %d", r.Len())
	}

	// the evicted id starts over
	sess := r.GetOrCreate("old")
	if len(sess.History) != 0 {
		t.Fatal("recreated session must start with empty history")
	}
}

func TestTouchKeepsSessionAlive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := now
	r := NewRegistry(
		WithIdleTTL(10*time.Minute),
		WithClock(func() time.Time { return clock }),
	)

	r.GetOrCreate("busy")
	clock = now.Add(9 * time.Minute)
	r.GetOrCreate("busy")
	clock = now.Add(15 * time.Minute)

	if evicted := r.Sweep(); evicted != 0 {
		t.Fatalf("recently touched session must survive, evicted %d", evicted)
	}
}
