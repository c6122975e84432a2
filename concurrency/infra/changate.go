package infra

import (
	"context"
	"sync"

	"replicate-gate/concurrency/domain"
)

type chanGate struct {
	sem chan struct{}
}

// NewChanGate cria um gate simples baseado em channel com capacidade `max`.
//
// Senders bloqueados no channel são atendidos pelo runtime em ordem de
// chegada, o que dá a garantia "FIFO o suficiente": nenhum caller espera para
// sempre enquanto vagas são liberadas e tomadas por recém-chegados.
func NewChanGate(max int) domain.Gate {
	if max < 1 {
		max = 1
	}
	return &chanGate{sem: make(chan struct{}, max)}
}

func (g *chanGate) Acquire(ctx context.Context) (func(), bool) {
	select {
	case g.sem <- struct{}{}:
		// release tolera chamada dupla: a segunda vira no-op,
		// então a contagem nunca fica abaixo de zero.
		var once sync.Once
		return func() { once.Do(func() { <-g.sem }) }, true
	case <-ctx.Done():
		// espera abandonada sem tocar na contagem
		return nil, false
	}
}

func (g *chanGate) TryPeek() bool {
	return len(g.sem) < cap(g.sem)
}

func (g *chanGate) Snapshot() domain.GateSnapshot {
	return domain.GateSnapshot{Capacity: cap(g.sem), InUse: len(g.sem)}
}
