package concurrency

import (
	"sync"

	"replicate-gate/concurrency/domain"
)

// Singleton de processo.
//
// "Primeiro a escrever vence": a capacidade global da conta é uma só, definida
// por quem inicializou primeiro. Os argumentos das chamadas seguintes são
// ignorados de propósito — comportamento documentado e testado, não bug.
var (
	globalMu sync.Mutex
	global   *Manager
)

// GetOrCreate devolve o gerenciador global, criando-o na primeira chamada bem
// sucedida com a configuração passada (payload > ambiente > default).
//
// Uma primeira chamada que falha (token ausente) NÃO inicializa o singleton;
// uma chamada posterior com configuração válida pode criá-lo.
func GetOrCreate(payloadToken string, payloadLimit int, opts ...Option) (*Manager, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		return global, nil
	}

	m, err := NewManager(payloadToken, payloadLimit, opts...)
	if err != nil {
		return nil, err
	}
	global = m
	return m, nil
}

// Default devolve o gerenciador global já inicializado.
// Falha com domain.ErrNotInitialized antes do primeiro GetOrCreate.
func Default() (*Manager, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global == nil {
		return nil, domain.ErrNotInitialized
	}
	return global, nil
}

// GlobalGate é o atalho para o gate compartilhado.
func GlobalGate() (domain.Gate, error) {
	m, err := Default()
	if err != nil {
		return nil, err
	}
	return m.Gate(), nil
}

// GlobalStatus é o atalho para o snapshot de status.
func GlobalStatus() (domain.Status, error) {
	m, err := Default()
	if err != nil {
		return domain.Status{}, err
	}
	return m.Status(), nil
}

// ResetForTest descarta o singleton. Só para testes.
func ResetForTest() {
	globalMu.Lock()
	global = nil
	globalMu.Unlock()
}
