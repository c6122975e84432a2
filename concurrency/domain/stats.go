package domain

import (
	"context"
	"time"
)

// Outcome classifica um evento de admissão do gate global.
type Outcome string

const (
	// OutcomeAdmitted: uma vaga foi concedida.
	OutcomeAdmitted Outcome = "admitted"
	// OutcomeReleased: uma vaga foi devolvida.
	OutcomeReleased Outcome = "released"
	// OutcomeDenied: a espera foi abandonada (ctx cancelado/timeout).
	OutcomeDenied Outcome = "denied"
)

// StatsEvent representa um evento de admissão.
//
// Worker/Model são strings genéricas de propósito: servem para lotes de
// imagem, TTS ou qualquer outro consumidor da conta.
//
// Observação: cuidado com cardinalidade de Worker ao persistir (um id por
// goroutine explode o número de chaves em uma base como Redis).
type StatsEvent struct {
	Outcome Outcome

	Worker string
	Model  string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem registra deve tratar erro como best-effort (não derrubar a chamada).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
