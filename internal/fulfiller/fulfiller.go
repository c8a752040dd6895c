package fulfiller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"snatch/internal/artifacts"
	"snatch/internal/cookies"
	"snatch/internal/fingerprint"
	"snatch/internal/history"
	"snatch/internal/logging"
	"snatch/internal/media"
	"snatch/internal/pending"
	"snatch/internal/ytdlp"
)

// Recorder persists finished extraction attempts. The history store
// satisfies it; a nil Recorder disables recording.
type Recorder interface {
	Record(ctx context.Context, attempt history.Attempt) error
}

// Fulfiller drains the pending cache by launching extractions. Each
// pass serves one media kind and kinds alternate between passes, so a
// burst of video requests cannot starve audio jobs.
type Fulfiller struct {
	cache    *pending.Cache
	store    *artifacts.Store
	cookies  *cookies.Supplier
	client   *ytdlp.Client
	recorder Recorder
	logger   *slog.Logger

	interval  time.Duration
	batchSize int

	kinds []media.Kind
	next  int

	wg sync.WaitGroup
}

// New builds a Fulfiller.
func New(
	cache *pending.Cache,
	store *artifacts.Store,
	supplier *cookies.Supplier,
	client *ytdlp.Client,
	recorder Recorder,
	logger *slog.Logger,
	interval time.Duration,
	batchSize int,
) *Fulfiller {
	if interval <= 0 {
		interval = time.Minute
	}
	if batchSize <= 0 {
		batchSize = 3
	}
	return &Fulfiller{
		cache:     cache,
		store:     store,
		cookies:   supplier,
		client:    client,
		recorder:  recorder,
		logger:    logging.NewComponentLogger(logger, "fulfiller"),
		interval:  interval,
		batchSize: batchSize,
		kinds:     []media.Kind{media.KindVideo, media.KindAudio},
	}
}

// Run drives the fulfillment loop until the context is cancelled, then
// waits for in-flight extractions to finish.
func (f *Fulfiller) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	f.logger.Info("fulfillment loop started",
		logging.Duration("interval", f.interval),
		logging.Int("batch_size", f.batchSize))

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("fulfillment loop stopping")
			f.wg.Wait()
			return
		case <-ticker.C:
			f.Tick(ctx)
		}
	}
}

// Tick serves one media kind and advances the rotation. It is exported
// so tests and admin tooling can step the loop manually.
func (f *Fulfiller) Tick(ctx context.Context) {
	kind := f.kinds[f.next]
	f.next = (f.next + 1) % len(f.kinds)

	launched := 0
	for _, key := range f.cache.Keys() {
		if launched >= f.batchSize {
			break
		}
		job, ok := f.cache.Get(key)
		if !ok || job.Kind != kind {
			continue
		}
		if f.serve(ctx, key, job) {
			launched++
		}
	}

	if launched > 0 {
		f.logger.Info("extractions launched",
			logging.String(logging.FieldKind, string(kind)),
			logging.Int("launched", launched))
	}
}

// serve handles one pending entry. It returns true when an extraction
// process was launched for it.
func (f *Fulfiller) serve(ctx context.Context, key fingerprint.JobKey, job pending.Job) bool {
	filename := job.Filename(key)
	logger := f.logger.With(
		logging.String(logging.FieldJobKey, string(key)),
		logging.String(logging.FieldSite, job.Site))

	exists, err := f.store.Exists(job.Kind, filename)
	if err != nil {
		logger.Error("artifact check failed", logging.Error(err))
		return false
	}
	if exists {
		f.cache.Delete(key)
		logger.Debug("artifact already present, entry dropped")
		return false
	}

	cookiePath, err := f.cookies.Latest(job.Site)
	if err != nil {
		logger.Warn("cookie lookup failed, continuing without cookies", logging.Error(err))
		cookiePath = ""
	}

	startedAt := time.Now()
	handle, err := f.client.Start(ctx, ytdlp.Request{
		URL:        job.URL,
		Site:       job.Site,
		Kind:       job.Kind,
		Format:     job.Format,
		Quality:    job.Quality,
		CookiePath: cookiePath,
		OutputPath: f.store.PathFor(job.Kind, filename),
	})
	if err != nil {
		f.cache.Delete(key)
		logger.Error("extraction launch failed", logging.Error(err))
		f.record(ctx, key, job, history.Attempt{
			Succeeded:  false,
			ExitCode:   -1,
			Stderr:     err.Error(),
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		})
		return false
	}

	f.wg.Add(1)
	go f.supervise(ctx, key, job, handle, startedAt, logger)
	return true
}

// supervise waits out one extraction. The entry is removed whatever the
// outcome: success means the artifact exists, failure means the request
// gets one shot and clients may re-request later.
func (f *Fulfiller) supervise(ctx context.Context, key fingerprint.JobKey, job pending.Job, handle ytdlp.Handle, startedAt time.Time, logger *slog.Logger) {
	defer f.wg.Done()

	result := handle.Wait()
	f.cache.Delete(key)

	if result.Ok() {
		logger.Info("extraction finished",
			logging.String(logging.FieldKind, string(job.Kind)),
			logging.Duration("elapsed", time.Since(startedAt)))
	} else {
		logger.Error("extraction failed",
			logging.Int("exit_code", result.ExitCode),
			logging.String("stderr", result.Stderr),
			logging.Error(result.Err))
	}

	errText := result.Stderr
	if result.Err != nil && errText == "" {
		errText = result.Err.Error()
	}
	f.record(ctx, key, job, history.Attempt{
		Succeeded:  result.Ok(),
		ExitCode:   result.ExitCode,
		Stderr:     errText,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})
}

func (f *Fulfiller) record(ctx context.Context, key fingerprint.JobKey, job pending.Job, attempt history.Attempt) {
	if f.recorder == nil {
		return
	}
	attempt.JobKey = key
	attempt.Site = job.Site
	attempt.Kind = job.Kind
	attempt.Format = job.Format
	attempt.Quality = job.Quality
	attempt.URL = job.URL
	if err := f.recorder.Record(ctx, attempt); err != nil {
		f.logger.Warn("history record failed", logging.Error(err))
	}
}

// WaitIdle blocks until every launched extraction has finished. Tests
// use it to observe supervised completions deterministically.
func (f *Fulfiller) WaitIdle() {
	f.wg.Wait()
}
