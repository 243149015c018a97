// Package cache is the time-boxed memo layer in front of the scoring and
// alert paths. It is an explicit, injectable component with defined TTLs,
// safe under concurrent request handling.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Kind tags the assessment type a cached payload belongs to.
type Kind string

const (
	KindRiskScore Kind = "risk_score"
	KindAlerts    Kind = "alerts"
)

// Config holds per-kind TTLs.
type Config struct {
	ScoreTTL time.Duration
	AlertTTL time.Duration
}

// DefaultConfig returns the standard TTLs: 1 hour for composite scores,
// 30 minutes for alert lists.
func DefaultConfig() Config {
	return Config{
		ScoreTTL: time.Hour,
		AlertTTL: 30 * time.Minute,
	}
}

// Cache memoizes assessment results keyed by institution identity and
// assessment kind. Entries expire after their kind's TTL; there is no other
// eviction.
type Cache struct {
	cfg   Config
	inner *gocache.Cache
}

// New creates a Cache with the given TTL config.
func New(cfg Config) *Cache {
	if cfg.ScoreTTL == 0 {
		cfg.ScoreTTL = DefaultConfig().ScoreTTL
	}
	if cfg.AlertTTL == 0 {
		cfg.AlertTTL = DefaultConfig().AlertTTL
	}
	return &Cache{
		cfg:   cfg,
		inner: gocache.New(gocache.NoExpiration, 10*time.Minute),
	}
}

// Get returns the cached payload for the institution and kind, if present
// and unexpired.
func (c *Cache) Get(institution string, kind Kind) (any, bool) {
	return c.inner.Get(Key(institution, kind))
}

// Set stores a payload under the institution and kind with the kind's TTL.
func (c *Cache) Set(institution string, kind Kind, payload any) {
	c.inner.Set(Key(institution, kind), payload, c.ttl(kind))
}

// Flush drops every entry. Used at teardown and in tests.
func (c *Cache) Flush() {
	c.inner.Flush()
}

func (c *Cache) ttl(kind Kind) time.Duration {
	if kind == KindAlerts {
		return c.cfg.AlertTTL
	}
	return c.cfg.ScoreTTL
}

// Key derives the cache key from institution name and assessment kind.
// Names are case-folded so "Truist" and "TRUIST" share an entry.
func Key(institution string, kind Kind) string {
	h := sha256.Sum256([]byte(strings.ToUpper(strings.TrimSpace(institution)) + "|" + string(kind)))
	return hex.EncodeToString(h[:16])
}
