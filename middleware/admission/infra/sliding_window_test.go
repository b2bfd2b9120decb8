package infra

import (
	"sync"
	"testing"
	"time"

	"chatbot-gateway/middleware/admission/domain"
)

// fakeClock permite avançar o tempo manualmente nos testes.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSlidingWindow_GetSameKeyReturnsSameLimiter(t *testing.T) {
	s := NewSlidingWindowStore(10, time.Minute)

	l1 := s.Get(domain.Key("k"))
	l2 := s.Get(domain.Key("k"))
	if l1 != l2 {
		t.Fatalf("expected same limiter pointer for same key")
	}
}

func TestSlidingWindow_AdmitsUpToLimitThenRejects(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(3, time.Minute, WithClock(clock.Now))

	lim := s.get("1.2.3.4")
	for i := 0; i < 3; i++ {
		if !lim.Allow() {
			t.Fatalf("expected request %d to be admitted", i+1)
		}
		clock.Advance(time.Second)
	}
	if lim.Allow() {
		t.Fatalf("expected 4th request inside the window to be denied")
	}
}

func TestSlidingWindow_RolloverReadmitsAfterWindow(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(1, time.Minute, WithClock(clock.Now))

	lim := s.get("k")
	if !lim.Allow() {
		t.Fatalf("expected first request to be admitted")
	}
	if lim.Allow() {
		t.Fatalf("expected second request to be denied")
	}

	clock.Advance(61 * time.Second)
	if !lim.Allow() {
		t.Fatalf("expected request after window rollover to be admitted")
	}
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(1, time.Minute, WithClock(clock.Now))

	if !s.get("a").Allow() {
		t.Fatalf("expected key a to be admitted")
	}
	if s.get("a").Allow() {
		t.Fatalf("expected key a to be at capacity")
	}
	// b não é afetado pelo consumo de a
	if !s.get("b").Allow() {
		t.Fatalf("expected key b to be admitted")
	}
}

func TestSlidingWindow_DenialDoesNotConsume(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(2, time.Minute, WithClock(clock.Now))

	lim := s.get("k")
	lim.Allow()
	lim.Allow()

	// duas avaliações seguidas no mesmo instante: mesma contagem, mesma resposta
	if lim.Allow() {
		t.Fatalf("expected denial at capacity")
	}
	if got := lim.Len(); got != 2 {
		t.Fatalf("expected 2 retained timestamps after denial, got %d", got)
	}
	if lim.Allow() {
		t.Fatalf("expected repeated denial at same instant")
	}
	if got := lim.Len(); got != 2 {
		t.Fatalf("expected denial to leave the log untouched, got %d", got)
	}
}

func TestSlidingWindow_ZeroLimitAlwaysDenies(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(0, time.Minute, WithClock(clock.Now))

	lim := s.get("k")
	if lim.Allow() {
		t.Fatalf("expected limit=0 to deny")
	}
	clock.Advance(2 * time.Minute)
	if lim.Allow() {
		t.Fatalf("expected limit=0 to keep denying after any wait")
	}
	if got := lim.Len(); got != 0 {
		t.Fatalf("expected empty log with limit=0, got %d", got)
	}
}

// Cenário concreto: limit=2, window=60s; 1.2.3.4 em t=0s e t=10s passa,
// t=20s é negado, t=61s passa (a janela já deixou o t=0s para trás).
func TestSlidingWindow_ConcreteScenario(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(2, 60*time.Second, WithClock(clock.Now))

	lim := s.get("1.2.3.4")
	if !lim.Allow() { // t=0s
		t.Fatalf("expected t=0s to be admitted")
	}
	clock.Advance(10 * time.Second)
	if !lim.Allow() { // t=10s
		t.Fatalf("expected t=10s to be admitted")
	}
	clock.Advance(10 * time.Second)
	if lim.Allow() { // t=20s
		t.Fatalf("expected t=20s to be denied")
	}
	clock.Advance(41 * time.Second)
	if !lim.Allow() { // t=61s
		t.Fatalf("expected t=61s to be admitted")
	}
}

func TestSlidingWindow_CleanupRemovesIdleEntries(t *testing.T) {
	clock := newFakeClock()
	s := NewSlidingWindowStore(10, time.Millisecond,
		WithClock(clock.Now), WithIdleTTL(2*time.Millisecond), WithCleanupEvery(0))

	before := s.Get(domain.Key("k"))
	clock.Advance(4 * time.Millisecond)

	s.Cleanup()

	after := s.Get(domain.Key("k"))
	if before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}

func TestSlidingWindow_ConcurrentSameKeyNeverExceedsLimit(t *testing.T) {
	const limit = 8
	s := NewSlidingWindowStore(limit, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.get("k").Allow() {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != limit {
		t.Fatalf("expected exactly %d admissions, got %d", limit, admitted)
	}
}
