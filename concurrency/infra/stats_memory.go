package infra

import (
	"context"
	"sync"

	"replicate-gate/concurrency/domain"
)

type Counters struct {
	Admitted int64
	Released int64
	Denied   int64
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	byModel  map[string]Counters
	byWorker map[string]Counters

	trackWorkers bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackWorkers(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackWorkers = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byModel:  make(map[string]Counters),
		byWorker: make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bump(&s.total, ev.Outcome)

	if ev.Model != "" {
		c := s.byModel[ev.Model]
		bump(&c, ev.Outcome)
		s.byModel[ev.Model] = c
	}
	if s.trackWorkers && ev.Worker != "" {
		c := s.byWorker[ev.Worker]
		bump(&c, ev.Outcome)
		s.byWorker[ev.Worker] = c
	}
	return nil
}

func bump(c *Counters, out domain.Outcome) {
	switch out {
	case domain.OutcomeAdmitted:
		c.Admitted++
	case domain.OutcomeReleased:
		c.Released++
	case domain.OutcomeDenied:
		c.Denied++
	}
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) ByModel() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byModel))
	for k, v := range s.byModel {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByWorker() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byWorker))
	for k, v := range s.byWorker {
		out[k] = v
	}
	return out
}
