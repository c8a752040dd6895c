package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"snatch/internal/api"
	"snatch/internal/artifacts"
	"snatch/internal/config"
	"snatch/internal/cookies"
	"snatch/internal/deps"
	"snatch/internal/fulfiller"
	"snatch/internal/history"
	"snatch/internal/logging"
	"snatch/internal/pending"
	"snatch/internal/sites"
	"snatch/internal/sweeper"
	"snatch/internal/ytdlp"
)

// Daemon coordinates the HTTP surface, the fulfillment loop, and the
// retention sweeper, and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	cache     *pending.Cache
	store     *artifacts.Store
	supplier  *cookies.Supplier
	client    *ytdlp.Client
	historyDB *history.Store
	fulfiller *fulfiller.Fulfiller
	sweeper   *sweeper.Sweeper
	server    *http.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("daemon requires config and logger")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	store := artifacts.NewStore(cfg.Paths.AudioDir, cfg.Paths.VideoDir, cfg.Server.BaseURL)
	if err := store.EnsureDirs(); err != nil {
		return nil, err
	}

	cache := pending.NewCache(logger)
	supplier := cookies.NewSupplier(cfg.Paths.CookieDir)
	client := ytdlp.NewClient(cfg.Extractor.YtdlpPath, cfg.Extractor.FFmpegPath)

	var historyDB *history.Store
	var recorder fulfiller.Recorder
	var reader api.HistoryReader
	if cfg.History.Enabled {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		historyDB = db
		recorder = db
		reader = db
	}

	ff := fulfiller.New(cache, store, supplier, client, recorder, logger,
		cfg.TickInterval(), cfg.Queue.BatchSize)

	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sw = sweeper.New(
			[]string{cfg.Paths.AudioDir, cfg.Paths.VideoDir},
			cfg.SweepInterval(), cfg.SweepMaxAge(), logger)
	}

	svc := api.NewService(cache, store, supplier, client,
		sites.NewChecker(), reader, logger, cfg.TTLFor)
	router := api.NewRouter(api.RouterConfig{
		Service:     svc,
		SecretKey:   cfg.Server.SecretKey,
		ServeStatic: cfg.Server.ServeStatic,
		AudioDir:    cfg.Paths.AudioDir,
		VideoDir:    cfg.Paths.VideoDir,
		Logger:      logger,
	})

	lockPath := filepath.Join(cfg.Paths.LogDir, "snatchd.lock")
	return &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		cache:     cache,
		store:     store,
		supplier:  supplier,
		client:    client,
		historyDB: historyDB,
		fulfiller: ff,
		sweeper:   sw,
		server: &http.Server{
			Addr:              cfg.Paths.APIBind,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the background services
// and the HTTP listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another snatch daemon instance is already running")
	}

	for _, status := range deps.Check(deps.ForConfig(d.cfg)) {
		if status.Available {
			continue
		}
		d.logger.Warn("extractor dependency unavailable",
			logging.String("name", status.Name),
			logging.String("detail", status.Detail))
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.fulfiller.Run(runCtx)
	}()

	if d.sweeper != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.sweeper.Run(runCtx)
		}()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("http server failed", logging.Error(err))
			cancel()
		}
	}()

	d.running.Store(true)
	d.logger.Info("snatch daemon started",
		logging.String("bind", d.cfg.Paths.APIBind),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the HTTP server, stops background services, and
// releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("http shutdown failed", logging.Error(err))
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.fulfiller.WaitIdle()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("snatch daemon stopped")
}

// Close stops the daemon and releases held resources.
func (d *Daemon) Close() error {
	d.Stop()
	if d.historyDB != nil {
		return d.historyDB.Close()
	}
	return nil
}

// Running reports whether the daemon has been started.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LockPath returns the path of the single-instance lock file.
func (d *Daemon) LockPath() string {
	return d.lockPath
}
