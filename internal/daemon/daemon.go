package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"lens/internal/api"
	"lens/internal/callback"
	"lens/internal/config"
	"lens/internal/logging"
	"lens/internal/objectstore"
	"lens/internal/recognition"
	"lens/internal/recognizer"
	"lens/internal/result"
	"lens/internal/store"
	"lens/internal/upload"
	"lens/internal/workflow"
)

const shutdownGrace = 5 * time.Second

// Daemon owns the wired component graph and the serving lifecycle.
type Daemon struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *store.Store
	runner *workflow.Runner
	server *api.Server

	lockPath string
	lock     *flock.Flock

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener

	running atomic.Bool
	addr    atomic.Value
}

// New builds the full component graph from configuration. The returned
// daemon holds an open store; callers must Close it.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}
	objects, err := objectstore.New(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	engine, err := recognizer.New(ctx, cfg, objects)
	if err != nil {
		st.Close()
		return nil, err
	}

	runner := workflow.NewRunner(cfg, st, workflow.Steps{
		Watchdog:   upload.NewWatchdog(st, objects, logger),
		Extractor:  recognition.NewExtractor(st, engine, logger),
		Persister:  recognition.NewPersister(st, logger),
		Dispatcher: callback.NewDispatcher(st, callback.NewHTTPInvoker(cfg), logger),
		Fallback:   recognition.NewFailureHandler(st, logger),
	}, logger)

	registrar := upload.NewRegistrar(st, objects,
		upload.LauncherFunc(runner.WatchUpload), upload.SchemeValidator{}, logger)
	trigger := recognition.NewTrigger(st,
		recognition.LauncherFunc(runner.RunRecognition), logger)
	server := api.NewServer(cfg, st, registrar, trigger, result.NewReader(st), objects, logger)

	lockPath := filepath.Join(cfg.Paths.LogDir, "lensd.lock")
	return &Daemon{
		cfg:      cfg,
		log:      logging.NewComponentLogger(logger, "daemon"),
		store:    st,
		runner:   runner,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock, starts the workflow runner, recovers
// unfinished work, and binds the API listener. Serving happens in Run.
func (d *Daemon) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire daemon lock: %w", err)
	}
	if !ok {
		return errors.New("another lens daemon instance is already running")
	}

	if err := d.runner.Start(ctx); err != nil {
		_ = d.lock.Unlock()
		return err
	}
	if err := d.runner.Recover(ctx); err != nil {
		d.runner.Stop()
		_ = d.lock.Unlock()
		return fmt.Errorf("recover unfinished work: %w", err)
	}

	listener, err := net.Listen("tcp", d.cfg.API.Bind)
	if err != nil {
		d.runner.Stop()
		_ = d.lock.Unlock()
		return fmt.Errorf("api listen: %w", err)
	}
	d.listener = listener
	d.httpServer = &http.Server{
		Handler:           d.server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	d.addr.Store(listener.Addr().String())

	d.running.Store(true)
	d.log.Info("daemon started",
		logging.String("address", listener.Addr().String()),
		logging.String("lock", d.lockPath))
	return nil
}

// Run starts the daemon and serves the API until ctx is canceled. A canceled
// context is the normal way down and yields a nil error.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	d.mu.Lock()
	srv, listener := d.httpServer, d.listener
	d.mu.Unlock()

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve api: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown api: %w", err)
		}
		return nil
	})
	return eg.Wait()
}

// Stop shuts the API server down, drains workflow goroutines, and releases
// the instance lock.
func (d *Daemon) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	_ = d.httpServer.Shutdown(shutdownCtx)
	if d.listener != nil {
		_ = d.listener.Close()
		d.listener = nil
	}

	d.runner.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.log.Warn("release daemon lock", logging.Error(err))
	}
	d.addr.Store("")
	d.running.Store(false)
	d.log.Info("daemon stopped")
}

// Close stops the daemon and closes the record store.
func (d *Daemon) Close() error {
	d.Stop()
	return d.store.Close()
}

// Running reports whether the daemon has started and not yet stopped.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	if addr, ok := d.addr.Load().(string); ok {
		return addr
	}
	return ""
}
