package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"lens/internal/callback"
	"lens/internal/config"
	"lens/internal/logging"
	"lens/internal/recognition"
	"lens/internal/store"
	"lens/internal/upload"
)

// Steps bundles the pipeline components the runner drives.
type Steps struct {
	Watchdog   *upload.Watchdog
	Extractor  *recognition.Extractor
	Persister  *recognition.Persister
	Dispatcher *callback.Dispatcher
	Fallback   *recognition.FailureHandler
}

// Runner executes upload watches and recognition pipelines as background
// goroutines.
type Runner struct {
	store *store.Store
	steps Steps
	log   *slog.Logger

	uploadWindow time.Duration

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner constructs a runner over the given pipeline steps.
func NewRunner(cfg *config.Config, st *store.Store, steps Steps, logger *slog.Logger) *Runner {
	return &Runner{
		store:        st,
		steps:        steps,
		log:          logging.NewComponentLogger(logger, "workflow"),
		uploadWindow: time.Duration(cfg.Workflow.UploadWindow) * time.Second,
	}
}

// Start makes the runner accept watches and pipelines. Launched work is
// canceled when ctx ends or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("workflow runner already running")
	}
	r.runCtx, r.cancel = context.WithCancel(ctx)
	r.running = true
	return nil
}

// Stop cancels all launched work and waits for the goroutines to drain.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.wg.Wait()
}

// Running reports whether the runner accepts new work.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// spawn registers one background goroutine bound to the runner context.
func (r *Runner) spawn(task func(ctx context.Context)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return errors.New("workflow runner not running")
	}
	ctx := r.runCtx
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		task(ctx)
	}()
	return nil
}
