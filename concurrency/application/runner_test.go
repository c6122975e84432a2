package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunner_RunsAllJobsAndKeepsOrder(t *testing.T) {
	var calls int32
	jobs := make([]Job, 5)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}
	}

	errs := Runner{LocalMax: 2}.Run(context.Background(), jobs)

	if calls != 5 {
		t.Fatalf("expected 5 jobs executed, got %d", calls)
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("expected nil error at %d, got %v", i, err)
		}
	}
}

func TestRunner_LocalLimitBoundsParallelism(t *testing.T) {
	var running, peak int32

	jobs := make([]Job, 6)
	for i := range jobs {
		jobs[i] = func(ctx context.Context) error {
			cur := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		}
	}

	Runner{LocalMax: 2}.Run(context.Background(), jobs)

	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Fatalf("expected at most 2 jobs in parallel, observed %d", got)
	}
}

func TestRunner_AdmitWrapsEveryJob(t *testing.T) {
	var mu sync.Mutex
	admitted, released := 0, 0

	admit := func(ctx context.Context) (func(), bool) {
		mu.Lock()
		admitted++
		mu.Unlock()
		return func() {
			mu.Lock()
			released++
			mu.Unlock()
		}, true
	}

	jobs := []Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return errors.New("boom") },
		func(ctx context.Context) error { panic("bad job") },
	}

	errs := Runner{Admit: admit}.Run(context.Background(), jobs)

	mu.Lock()
	defer mu.Unlock()
	if admitted != 3 || released != 3 {
		t.Fatalf("expected 3 admits and 3 releases, got %d/%d", admitted, released)
	}
	if errs[0] != nil {
		t.Fatalf("expected nil error for first job, got %v", errs[0])
	}
	if errs[1] == nil || errs[1].Error() != "boom" {
		t.Fatalf("expected job error to surface, got %v", errs[1])
	}
	if errs[2] == nil {
		t.Fatalf("expected panic converted to error")
	}
}

func TestRunner_DeniedAdmitYieldsErrNoSlot(t *testing.T) {
	admit := func(ctx context.Context) (func(), bool) { return nil, false }

	errs := Runner{Admit: admit}.Run(context.Background(), []Job{
		func(ctx context.Context) error { return nil },
	})

	if !errors.Is(errs[0], ErrNoSlot) {
		t.Fatalf("expected ErrNoSlot, got %v", errs[0])
	}
}

func TestRunner_CancelledContextSurfacesCtxErr(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	admit := func(ctx context.Context) (func(), bool) { return nil, false }

	errs := Runner{Admit: admit, LocalMax: 1}.Run(ctx, []Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return nil },
	})

	for i, err := range errs {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled at %d, got %v", i, err)
		}
	}
}

type countingPacer struct {
	mu    sync.Mutex
	waits int
	model string
}

func (p *countingPacer) Wait(ctx context.Context, model string) error {
	p.mu.Lock()
	p.waits++
	p.model = model
	p.mu.Unlock()
	return nil
}

func TestRunner_PacerRunsBeforeEachJob(t *testing.T) {
	pacer := &countingPacer{}

	Runner{Pace: pacer, Model: "flux-dev"}.Run(context.Background(), []Job{
		func(ctx context.Context) error { return nil },
		func(ctx context.Context) error { return nil },
	})

	pacer.mu.Lock()
	defer pacer.mu.Unlock()
	if pacer.waits != 2 {
		t.Fatalf("expected 2 pacer waits, got %d", pacer.waits)
	}
	if pacer.model != "flux-dev" {
		t.Fatalf("expected model passed to pacer, got %q", pacer.model)
	}
}
