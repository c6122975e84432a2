package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Job é uma unidade de trabalho do lote (ex: gerar a imagem de um prompt).
type Job func(ctx context.Context) error

// AdmitFunc pede uma vaga global e devolve a função de release.
// Na prática é o Acquire do gerenciador global.
type AdmitFunc func(ctx context.Context) (release func(), ok bool)

// Pacer limita a taxa de envio por modelo. A implementação concreta fica em
// infra (x/time/rate).
type Pacer interface {
	Wait(ctx context.Context, model string) error
}

// ErrNoSlot indica que o Admit recusou sem o contexto do lote ter encerrado
// (ex: timeout de aquisição configurado no wrapper).
var ErrNoSlot = errors.New("no global concurrency slot available")

// Runner executa um lote de jobs respeitando dois limites:
//
//   - local: quantos jobs DESTE lote rodam ao mesmo tempo (pool próprio)
//   - global: as vagas da conta, adquiridas via Admit em volta de cada job
//
// Opcionalmente espera o Pacer do modelo antes de pedir a vaga global.
// Vários Runners no mesmo processo dividem as mesmas vagas globais.
type Runner struct {
	Admit    AdmitFunc
	LocalMax int
	Pace     Pacer
	Model    string
}

// Run executa os jobs e devolve um erro por posição (nil quando ok).
// A vaga global é liberada em todos os caminhos de saída, inclusive panic.
func (r Runner) Run(ctx context.Context, jobs []Job) []error {
	errs := make([]error, len(jobs))
	if len(jobs) == 0 {
		return errs
	}

	localMax := r.LocalMax
	if localMax <= 0 {
		localMax = len(jobs)
	}
	local := make(chan struct{}, localMax)

	var wg sync.WaitGroup
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()

			select {
			case local <- struct{}{}:
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			defer func() { <-local }()

			if r.Pace != nil {
				if err := r.Pace.Wait(ctx, r.Model); err != nil {
					errs[i] = err
					return
				}
			}

			if r.Admit != nil {
				release, ok := r.Admit(ctx)
				if !ok {
					if err := ctx.Err(); err != nil {
						errs[i] = err
					} else {
						errs[i] = ErrNoSlot
					}
					return
				}
				defer release()
			}

			errs[i] = runJob(ctx, job)
		}(i, job)
	}
	wg.Wait()
	return errs
}

// runJob converte panic do job em erro, para o release acontecer e o lote
// continuar.
func runJob(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("job panicked: %v", rec)
		}
	}()
	return job(ctx)
}
