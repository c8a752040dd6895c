package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"snatch/internal/artifacts"
	"snatch/internal/cookies"
	"snatch/internal/fingerprint"
	"snatch/internal/history"
	"snatch/internal/logging"
	"snatch/internal/media"
	"snatch/internal/pending"
	"snatch/internal/sites"
	"snatch/internal/ytdlp"
)

// HistoryReader exposes the read side of the attempt store.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Attempt, error)
	CountsByOutcome(ctx context.Context) (history.Counts, error)
}

// Service orchestrates request handling: fingerprinting, artifact
// lookup, availability checks, and either synchronous extraction or
// enqueueing into the pending cache.
type Service struct {
	cache     *pending.Cache
	store     *artifacts.Store
	cookies   *cookies.Supplier
	client    *ytdlp.Client
	checker   *sites.Checker
	reader    HistoryReader
	logger    *slog.Logger
	ttlFor    func(site string) time.Duration
	startedAt time.Time
}

// NewService wires a Service. reader may be nil when history is disabled.
func NewService(
	cache *pending.Cache,
	store *artifacts.Store,
	supplier *cookies.Supplier,
	client *ytdlp.Client,
	checker *sites.Checker,
	reader HistoryReader,
	logger *slog.Logger,
	ttlFor func(site string) time.Duration,
) *Service {
	return &Service{
		cache:     cache,
		store:     store,
		cookies:   supplier,
		client:    client,
		checker:   checker,
		reader:    reader,
		logger:    logging.NewComponentLogger(logger, "api"),
		ttlFor:    ttlFor,
		startedAt: time.Now(),
	}
}

// Artifact describes a produced file as reported to clients.
type Artifact struct {
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Link     string `json:"link"`
	Size     int64  `json:"size"`
}

func (s *Service) jobFor(site string, kind media.Kind, rawURL, format, quality string) (fingerprint.JobKey, pending.Job) {
	itemID, ok := sites.ExtractID(site, rawURL)
	if !ok {
		itemID = rawURL
	}
	key := fingerprint.Compute(site, kind, itemID, format, quality)
	return key, pending.Job{
		URL:     rawURL,
		Site:    site,
		Kind:    kind,
		Format:  format,
		Quality: quality,
	}
}

func (s *Service) lookupArtifact(kind media.Kind, key fingerprint.JobKey, format string) (*Artifact, bool, error) {
	filename := key.Filename(format)
	exists, err := s.store.Exists(kind, filename)
	if err != nil || !exists {
		return nil, false, err
	}
	size, err := s.store.Size(kind, filename)
	if err != nil {
		return nil, false, err
	}
	return &Artifact{
		Key:      string(key),
		Filename: filename,
		Link:     s.store.LinkFor(kind, filename),
		Size:     size,
	}, true, nil
}

func (s *Service) checkAvailability(ctx context.Context, site, rawURL string) error {
	if site == sites.YouTube {
		return nil
	}
	return s.checker.Check(ctx, site, rawURL)
}

// Produce runs the extraction synchronously and returns the resulting
// artifact. An already present artifact short-circuits the extraction.
func (s *Service) Produce(ctx context.Context, site string, kind media.Kind, rawURL, format, quality string) (*Artifact, error) {
	key, _ := s.jobFor(site, kind, rawURL, format, quality)

	if artifact, ok, err := s.lookupArtifact(kind, key, format); err != nil {
		return nil, err
	} else if ok {
		return artifact, nil
	}

	if err := s.checkAvailability(ctx, site, rawURL); err != nil {
		return nil, err
	}

	cookiePath, err := s.cookies.Latest(site)
	if err != nil {
		s.logger.Warn("cookie lookup failed, continuing without cookies", logging.Error(err))
		cookiePath = ""
	}

	filename := key.Filename(format)
	err = s.client.Run(ctx, ytdlp.Request{
		URL:        rawURL,
		Site:       site,
		Kind:       kind,
		Format:     format,
		Quality:    quality,
		CookiePath: cookiePath,
		OutputPath: s.store.PathFor(kind, filename),
	})
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}

	artifact, ok, err := s.lookupArtifact(kind, key, format)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("extraction produced no artifact for %s", filename)
	}
	return artifact, nil
}

// Enqueue accepts a request for background fulfillment. When the
// artifact already exists it is returned immediately and nothing is
// queued; otherwise the job lands in the pending cache (deduplicated)
// and queued is true.
func (s *Service) Enqueue(ctx context.Context, site string, kind media.Kind, rawURL, format, quality string) (*Artifact, bool, error) {
	key, job := s.jobFor(site, kind, rawURL, format, quality)

	if artifact, ok, err := s.lookupArtifact(kind, key, format); err != nil {
		return nil, false, err
	} else if ok {
		return artifact, false, nil
	}

	if err := s.checkAvailability(ctx, site, rawURL); err != nil {
		return nil, false, err
	}

	inserted := s.cache.SetIfAbsent(key, job, s.ttlFor(site))
	if !inserted {
		s.logger.Debug("duplicate request collapsed",
			logging.String(logging.FieldJobKey, string(key)),
			logging.String(logging.FieldSite, site))
	}
	return nil, true, nil
}

// FormatInfo summarizes one stream offered by the remote item.
type FormatInfo struct {
	FormatID   string  `json:"format_id"`
	Ext        string  `json:"ext"`
	Resolution string  `json:"resolution,omitempty"`
	ABR        float64 `json:"abr,omitempty"`
	Filesize   int64   `json:"filesize,omitempty"`
}

// InfoResult is the metadata listing returned by the info endpoints.
type InfoResult struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Duration     float64      `json:"duration"`
	AudioFormats []FormatInfo `json:"audio_formats"`
	VideoFormats []FormatInfo `json:"video_formats"`
}

type dumpPayload struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Duration float64 `json:"duration"`
	Formats  []struct {
		FormatID   string  `json:"format_id"`
		Ext        string  `json:"ext"`
		Resolution string  `json:"resolution"`
		ABR        float64 `json:"abr"`
		VCodec     string  `json:"vcodec"`
		Filesize   int64   `json:"filesize"`
	} `json:"formats"`
}

// Info fetches the remote item's metadata and splits its stream list
// into audio-only and video formats.
func (s *Service) Info(ctx context.Context, site, rawURL string) (*InfoResult, error) {
	cookiePath, err := s.cookies.Latest(site)
	if err != nil {
		cookiePath = ""
	}
	raw, err := s.client.Dump(ctx, rawURL, cookiePath)
	if err != nil {
		return nil, err
	}

	var payload dumpPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}

	result := &InfoResult{
		ID:           payload.ID,
		Title:        payload.Title,
		Duration:     payload.Duration,
		AudioFormats: []FormatInfo{},
		VideoFormats: []FormatInfo{},
	}
	for _, f := range payload.Formats {
		info := FormatInfo{
			FormatID:   f.FormatID,
			Ext:        f.Ext,
			Resolution: f.Resolution,
			ABR:        f.ABR,
			Filesize:   f.Filesize,
		}
		if f.VCodec == "none" {
			result.AudioFormats = append(result.AudioFormats, info)
		} else {
			result.VideoFormats = append(result.VideoFormats, info)
		}
	}
	return result, nil
}

// FlushPending drops every pending entry and returns the count removed.
func (s *Service) FlushPending() int {
	return s.cache.FlushAll()
}

// SaveCookies stores an uploaded cookie file for a site.
func (s *Service) SaveCookies(site string, content io.Reader) (string, error) {
	return s.cookies.Save(site, content)
}

// ClearCookies wipes all stored cookie files.
func (s *Service) ClearCookies() (int, error) {
	return s.cookies.Clear()
}

// PendingJob is one pending cache entry as reported to admin clients.
type PendingJob struct {
	Key     string `json:"key"`
	URL     string `json:"url"`
	Site    string `json:"site"`
	Kind    string `json:"kind"`
	Format  string `json:"format"`
	Quality string `json:"quality,omitempty"`
}

// PendingJobs snapshots the pending cache in insertion order.
func (s *Service) PendingJobs() []PendingJob {
	keys := s.cache.Keys()
	jobs := make([]PendingJob, 0, len(keys))
	for _, key := range keys {
		job, ok := s.cache.Get(key)
		if !ok {
			continue
		}
		jobs = append(jobs, PendingJob{
			Key:     string(key),
			URL:     job.URL,
			Site:    job.Site,
			Kind:    string(job.Kind),
			Format:  job.Format,
			Quality: job.Quality,
		})
	}
	return jobs
}

// StatusReport summarizes daemon state for admin clients.
type StatusReport struct {
	Pending       int             `json:"pending"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	History       *history.Counts `json:"history,omitempty"`
}

// Status builds the current status report.
func (s *Service) Status(ctx context.Context) (StatusReport, error) {
	report := StatusReport{
		Pending:       s.cache.Len(),
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}
	if s.reader != nil {
		counts, err := s.reader.CountsByOutcome(ctx)
		if err != nil {
			return report, err
		}
		report.History = &counts
	}
	return report, nil
}

// History returns recent extraction attempts, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Attempt, error) {
	if s.reader == nil {
		return nil, nil
	}
	return s.reader.Recent(ctx, limit)
}
