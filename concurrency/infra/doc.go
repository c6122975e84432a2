// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - ChanGate: semáforo baseado em channel para o limite global de vagas
//   - PaceStore: token bucket por modelo usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: persistência de eventos de admissão
package infra
