package pending

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"snatch/internal/fingerprint"
	"snatch/internal/logging"
	"snatch/internal/media"
)

// Job describes a queued extraction request. It carries everything the
// fulfillment loop needs to launch the extraction without consulting the
// original HTTP request again.
type Job struct {
	URL     string
	Site    string
	Kind    media.Kind
	Format  string
	Quality string
}

// Filename returns the artifact filename this job will produce.
func (j Job) Filename(key fingerprint.JobKey) string {
	return key.Filename(j.Format)
}

type entry struct {
	job        Job
	insertedAt time.Time
	expiresAt  time.Time
}

// Cache is an in-memory TTL cache of pending extraction jobs keyed by
// fingerprint. Expired entries are pruned lazily on read.
type Cache struct {
	logger *slog.Logger
	clock  func() time.Time

	mu      sync.Mutex
	entries map[fingerprint.JobKey]entry
}

// NewCache builds an empty pending cache.
func NewCache(logger *slog.Logger) *Cache {
	return &Cache{
		logger:  logging.NewComponentLogger(logger, "pending"),
		clock:   time.Now,
		entries: make(map[fingerprint.JobKey]entry),
	}
}

// Has reports whether a live entry exists for the key.
func (c *Cache) Has(key fingerprint.JobKey) bool {
	_, ok := c.Get(key)
	return ok
}

// Get returns the job for the key if present and unexpired.
func (c *Cache) Get(key fingerprint.JobKey) (Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return Job{}, false
	}
	if c.clock().After(ent.expiresAt) {
		delete(c.entries, key)
		return Job{}, false
	}
	return ent.job, true
}

// SetIfAbsent inserts the job unless a live entry already exists for the
// key. It returns true when the job was inserted. The check and insert
// run under one lock so concurrent identical requests enqueue once.
func (c *Cache) SetIfAbsent(key fingerprint.JobKey, job Job, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	if ent, ok := c.entries[key]; ok && now.Before(ent.expiresAt) {
		return false
	}
	c.entries[key] = entry{job: job, insertedAt: now, expiresAt: now.Add(ttl)}
	c.logger.Debug("job queued",
		logging.String(logging.FieldJobKey, string(key)),
		logging.String(logging.FieldSite, job.Site),
		logging.String(logging.FieldKind, string(job.Kind)),
		logging.Duration("ttl", ttl))
	return true
}

// Set inserts or replaces the entry for the key.
func (c *Cache) Set(key fingerprint.JobKey, job Job, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	c.entries[key] = entry{job: job, insertedAt: now, expiresAt: now.Add(ttl)}
}

// Delete removes the entry for the key if present.
func (c *Cache) Delete(key fingerprint.JobKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Keys returns the live keys ordered by insertion time. Expired entries
// encountered during the scan are pruned.
func (c *Cache) Keys() []fingerprint.JobKey {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	type keyed struct {
		key fingerprint.JobKey
		at  time.Time
	}
	live := make([]keyed, 0, len(c.entries))
	for key, ent := range c.entries {
		if now.After(ent.expiresAt) {
			delete(c.entries, key)
			continue
		}
		live = append(live, keyed{key: key, at: ent.insertedAt})
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].key < live[j].key
		}
		return live[i].at.Before(live[j].at)
	})
	keys := make([]fingerprint.JobKey, len(live))
	for i, item := range live {
		keys[i] = item.key
	}
	return keys
}

// FlushAll drops every entry and returns the number removed.
func (c *Cache) FlushAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := len(c.entries)
	c.entries = make(map[fingerprint.JobKey]entry)
	if count > 0 {
		c.logger.Info("pending cache flushed", logging.Int("entries", count))
	}
	return count
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return len(c.Keys())
}

// SetClock overrides the time source. Tests use it to control expiry.
func (c *Cache) SetClock(clock func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if clock != nil {
		c.clock = clock
	}
}
