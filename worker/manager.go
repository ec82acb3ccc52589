package worker

import (
	"context"
	"errors"
	"sync"
)

// Worker is a long-running job driven by the serve command. Start
// blocks until the context is cancelled; a non-nil return means the
// worker gave up early.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager starts a set of workers and supervises them as one unit: if
// any worker fails, the whole run is cancelled rather than left limping
// along without its reclamation jobs.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start runs every worker until the context is cancelled or a worker
// fails, then waits for all of them to exit and returns their errors
// joined.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, len(m.workers))
	for _, w := range m.workers {
		wg.Add(1)
		go func(w Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil {
				errCh <- err
				cancel()
			}
		}(w)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
