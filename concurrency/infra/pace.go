package infra

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PaceStore é um token-bucket (x/time/rate) por modelo, com cache por chave e
// limpeza periódica.
//
// Ele cobre um limite diferente do gate global: a Replicate também limita a
// TAXA de requisições por segundo da conta, separada do número de chamadas em
// voo. O lote espera aqui antes de pedir vaga no gate.
type PaceStore struct {
	mu           sync.Mutex
	entries      map[string]*paceEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type paceEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type PaceOption func(*PaceStore)

func WithIdleTTL(d time.Duration) PaceOption {
	return func(s *PaceStore) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) PaceOption {
	return func(s *PaceStore) { s.cleanupEvery = d }
}

func NewPaceStore(rps float64, burst int, opts ...PaceOption) *PaceStore {
	s := &PaceStore{
		entries:      make(map[string]*paceEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PaceStore) RPS() float64                { return float64(s.rps) }
func (s *PaceStore) Burst() int                  { return s.burst }
func (s *PaceStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Get devolve o limiter do modelo, criando-o na primeira vez.
func (s *PaceStore) Get(model string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[model]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[model] = &paceEntry{lim: lim, lastSeen: now}
	return lim
}

// Wait bloqueia até o bucket do modelo liberar um token ou o ctx encerrar.
func (s *PaceStore) Wait(ctx context.Context, model string) error {
	return s.Get(model).Wait(ctx)
}

func (s *PaceStore) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor inicia uma goroutine que limpa modelos inativos periodicamente.
// Pare cancelando o contexto.
func (s *PaceStore) StartJanitor(ctx DoneContext) {
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

// DoneContext é o mínimo necessário para aceitar context.Context sem importar
// context no contrato. (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
