package workers

import (
	"context"
	"sync"
)

type Workers struct {
	workers []Worker

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Start launches every worker in its own goroutine under a context derived
// from ctx. Call Stop to end them.
func (w *Workers) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	for _, worker := range w.workers {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			worker.Run(ctx)
		}()
	}
}

// Stop cancels the workers and waits for all of them to return. It is safe
// to call without Start.
func (w *Workers) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
