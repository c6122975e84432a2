package application

import (
	"context"
	"time"

	"replicate-gate/concurrency/domain"
)

// AdmissionService concentra a regra de aquisição/liberação de vaga com
// timeout opcional, sem saber nada sobre o singleton nem sobre a API.
//
// O gate em si não tem timeout embutido; quem quer espera limitada usa este
// wrapper em vez de chamar o gate cru.
type AdmissionService struct {
	Gate           domain.Gate
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
func (s AdmissionService) Acquire(ctx context.Context) (func(), bool) {
	if s.Gate == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Gate.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Gate.Acquire(acqCtx)
}
