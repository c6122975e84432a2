package application

import (
	"context"
	"testing"
	"time"

	"replicate-gate/concurrency/domain"
)

type blockingGate struct{}

func (g *blockingGate) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return nil, false
	}
}

func (g *blockingGate) TryPeek() bool                 { return false }
func (g *blockingGate) Snapshot() domain.GateSnapshot { return domain.GateSnapshot{} }

type immediateGate struct {
	acquired int
}

func (g *immediateGate) Acquire(ctx context.Context) (func(), bool) {
	g.acquired++
	return func() {}, true
}

func (g *immediateGate) TryPeek() bool                 { return true }
func (g *immediateGate) Snapshot() domain.GateSnapshot { return domain.GateSnapshot{} }

func TestAdmissionService_Acquire_AllowsWhenNoGate(t *testing.T) {
	svc := AdmissionService{}
	release, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok")
	}
	release()
}

func TestAdmissionService_Acquire_UsesTimeout(t *testing.T) {
	gate := &blockingGate{}
	svc := AdmissionService{Gate: gate, AcquireTimeout: 10 * time.Millisecond}

	_, ok := svc.Acquire(context.Background())
	if ok {
		t.Fatalf("expected timeout and ok=false")
	}
}

func TestAdmissionService_Acquire_NoTimeoutDelegatesToGate(t *testing.T) {
	gate := &immediateGate{}
	svc := AdmissionService{Gate: gate, AcquireTimeout: 0}

	_, ok := svc.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok")
	}
	if gate.acquired != 1 {
		t.Fatalf("expected gate Acquire to be called once, got %d", gate.acquired)
	}
}
