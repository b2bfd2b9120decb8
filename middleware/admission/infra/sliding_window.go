package infra

import (
	"sync"
	"time"

	"chatbot-gateway/middleware/admission/domain"
)

// SlidingWindowStore é uma implementação de infra baseada em log de timestamps
// por chave (janela deslizante contínua), com cache por chave e limpeza periódica.
//
// Cada chave guarda os instantes das requisições admitidas dentro da janela.
// A decisão é: expira-primeiro-conta-depois; se a contagem restante alcançar o
// limite, nega sem registrar o instante atual (negação não consome cota).
type SlidingWindowStore struct {
	mu           sync.Mutex
	entries      map[string]*windowLimiter
	limit        int
	window       time.Duration
	idleTTL      time.Duration
	cleanupEvery time.Duration
	now          func() time.Time
}

type SlidingWindowOption func(*SlidingWindowStore)

func WithIdleTTL(d time.Duration) SlidingWindowOption {
	return func(s *SlidingWindowStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) SlidingWindowOption {
	return func(s *SlidingWindowStore) { s.cleanupEvery = d }
}

// WithClock injeta o relógio usado nas decisões (para testes determinísticos).
func WithClock(now func() time.Time) SlidingWindowOption {
	return func(s *SlidingWindowStore) { s.now = now }
}

// NewSlidingWindowStore cria um store com `limit` requisições por `window`.
//
// limit == 0 é degenerado mas válido: nega tudo, sem pânico.
func NewSlidingWindowStore(limit int, window time.Duration, opts ...SlidingWindowOption) *SlidingWindowStore {
	s := &SlidingWindowStore{
		entries:      make(map[string]*windowLimiter),
		limit:        limit,
		window:       window,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idleTTL < s.window {
		// uma chave nunca pode ser varrida enquanto ainda tem timestamps válidos
		s.idleTTL = s.window
	}
	return s
}

func (s *SlidingWindowStore) Limit() int                  { return s.limit }
func (s *SlidingWindowStore) Window() time.Duration       { return s.window }
func (s *SlidingWindowStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get implementa domain.LimiterStore.
func (s *SlidingWindowStore) Get(key domain.Key) domain.Limiter {
	return s.get(string(key))
}

func (s *SlidingWindowStore) get(key string) *windowLimiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		return ent
	}

	ent := &windowLimiter{store: s, lastSeen: s.now()}
	s.entries[key] = ent
	return ent
}

// Cleanup remove chaves sem atividade há mais que idleTTL.
func (s *SlidingWindowStore) Cleanup() {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		ent.mu.Lock()
		idle := ent.lastSeen.Before(cutoff)
		ent.mu.Unlock()
		if idle {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *SlidingWindowStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}

// windowLimiter é o log de uma chave. O mutex próprio garante que
// expirar-contar-e-registrar seja uma seção crítica única por chave.
type windowLimiter struct {
	mu       sync.Mutex
	store    *SlidingWindowStore
	hits     []time.Time
	lastSeen time.Time
}

// Allow implementa domain.Limiter.
func (l *windowLimiter) Allow() bool {
	now := l.store.now()
	cutoff := now.Add(-l.store.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastSeen = now

	// expira antes de contar; timestamps exatamente na borda da janela saem
	keep := l.hits[:0]
	for _, t := range l.hits {
		if t.After(cutoff) {
			keep = append(keep, t)
		}
	}
	l.hits = keep

	if len(l.hits) >= l.store.limit {
		return false
	}

	l.hits = append(l.hits, now)
	return true
}

// Len retorna a quantidade de timestamps retidos (sem expirar nada).
func (l *windowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}
