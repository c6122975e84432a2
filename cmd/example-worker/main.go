package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"replicate-gate/concurrency"
	"replicate-gate/concurrency/application"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Exemplo mínimo: um único worker usando o gate direto, sem Runner.
	// Token e limite vêm do ambiente (REPLICATE_API_TOKEN obrigatório).
	manager, err := concurrency.GetOrCreate("", 0)
	if err != nil {
		log.Fatalf("manager error: %v", err)
	}

	// espera limitada: quem quer timeout envolve o gate no AdmissionService
	svc := application.AdmissionService{
		Gate:           manager.Gate(),
		AcquireTimeout: 30 * time.Second,
	}

	jobs := 5
	if v := os.Getenv("JOBS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			jobs = n
		}
	}

	for i := 0; i < jobs; i++ {
		release, ok := svc.Acquire(context.Background())
		if !ok {
			log.Warnf("job %d: no slot within timeout", i)
			continue
		}

		func() {
			defer release()
			// aqui entraria a chamada real à Replicate
			time.Sleep(500 * time.Millisecond)
		}()

		st := manager.Status()
		log.Infof("job %d done: in_use=%d/%d total=%d", i, st.CurrentConcurrent, st.MaxConcurrent, st.TotalRequests)
	}
}
