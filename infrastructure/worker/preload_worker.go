package worker

import (
	"context"
	"sync"

	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/domain/repository"
	"alfreds-toolbox/infrastructure/logger"
)

// PreloadWorker runs analytics warm-up jobs in-process. A range already
// waiting in the queue is not queued twice.
type PreloadWorker struct {
	jobs    chan model.RangeName
	mu      sync.Mutex
	pending map[model.RangeName]bool
}

func NewPreloadWorker(buffer int) *PreloadWorker {
	if buffer <= 0 {
		buffer = len(model.PreloadRanges)
	}
	return &PreloadWorker{
		jobs:    make(chan model.RangeName, buffer),
		pending: make(map[model.RangeName]bool),
	}
}

var _ repository.IPreloadQueue = (*PreloadWorker)(nil)

// Enqueue never blocks; when the buffer is full the job is dropped and logged.
func (w *PreloadWorker) Enqueue(_ context.Context, rangeName model.RangeName) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending[rangeName] {
		return nil
	}
	select {
	case w.jobs <- rangeName:
		w.pending[rangeName] = true
	default:
		logger.GetLogger().WithField("range", rangeName).Warn("Preload queue full, dropping job")
	}
	return nil
}

// Run processes jobs one at a time until ctx is cancelled.
func (w *PreloadWorker) Run(ctx context.Context, handle func(context.Context, model.RangeName)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case rangeName := <-w.jobs:
			w.mu.Lock()
			delete(w.pending, rangeName)
			w.mu.Unlock()
			handle(ctx, rangeName)
		}
	}
}
