package domain

import "context"

// Gate representa um recurso com capacidade finita compartilhado por todo o
// processo: as vagas de chamadas concorrentes da conta Replicate.
//
// A semântica é: Acquire bloqueia até conseguir uma vaga ou até o ctx encerrar.
// Ao adquirir, retorna uma função de release que deve ser chamada exatamente
// uma vez; implementações devem tolerar chamadas extras sem corromper a
// contagem (nunca abaixo de zero).
type Gate interface {
	Acquire(ctx context.Context) (release func(), ok bool)

	// TryPeek informa, sem bloquear, se existe vaga livre agora.
	// Uso apenas para instrumentação: a admissão real sempre passa por
	// Acquire, senão há corrida entre a checagem e a aquisição.
	TryPeek() bool

	// Snapshot retorna (capacidade, em uso) em um par consistente para
	// relatório de status.
	Snapshot() GateSnapshot
}

// GateSnapshot é a observação pontual do gate.
type GateSnapshot struct {
	Capacity int
	InUse    int
}

func (s GateSnapshot) Available() int { return s.Capacity - s.InUse }
