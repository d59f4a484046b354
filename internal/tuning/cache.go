package tuning

import (
	"context"
	"fmt"
	"sync"

	"github.com/sofos1231/socialos-server/internal/platform/logger"
)

// Freshness is the cache's view of its copy of the remote tuning.
type Freshness int

const (
	Fresh Freshness = iota
	Stale
	Refreshing
)

func (f Freshness) String() string {
	switch f {
	case Fresh:
		return "fresh"
	case Stale:
		return "stale"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// CacheEvent drives the freshness state machine.
type CacheEvent int

const (
	RevisionAdvanced CacheEvent = iota
	RefreshStarted
	RefreshSucceeded
	RefreshFailed
)

// Transition is the single transition function of the freshness state
// machine. Unknown (state, event) pairs leave the state unchanged.
func Transition(f Freshness, ev CacheEvent) Freshness {
	switch {
	case f == Fresh && ev == RevisionAdvanced:
		return Stale
	case f == Stale && ev == RefreshStarted:
		return Refreshing
	case f == Refreshing && ev == RefreshSucceeded:
		return Fresh
	case f == Refreshing && ev == RefreshFailed:
		return Stale
	}
	return f
}

// Source is a remote tuning origin with a monotonically increasing
// revision counter.
type Source interface {
	Revision(ctx context.Context) (int64, error)
	Load(ctx context.Context) (Tuning, int64, error)
}

// RevisionCache is the self-healing cache in front of a Source: before
// each use it compares the remote revision against its own and performs
// a full refresh when stale. Staleness never fails a caller; on any
// source error the last known good tuning (or the defaults) is served.
type RevisionCache struct {
	source Source
	logger *logger.Logger

	mu       sync.Mutex
	state    Freshness
	revision int64
	current  Tuning
	everGood bool
}

// NewRevisionCache creates a cache seeded with the default tuning.
func NewRevisionCache(source Source, log *logger.Logger) *RevisionCache {
	return &RevisionCache{
		source:  source,
		logger:  log,
		state:   Stale, // force a load on first use
		current: Defaults(),
	}
}

// Tuning implements Provider. It checks the remote revision, refreshes
// on staleness, and always returns a usable tuning.
func (c *RevisionCache) Tuning(ctx context.Context) Tuning {
	c.mu.Lock()
	defer c.mu.Unlock()

	rev, err := c.source.Revision(ctx)
	if err != nil {
		c.logger.Warn("tuning revision check failed, serving cached tuning: " + err.Error())
		return c.current
	}

	if c.everGood && rev != c.revision {
		c.state = Transition(c.state, RevisionAdvanced)
	}
	if c.state != Stale {
		return c.current
	}

	c.state = Transition(c.state, RefreshStarted)
	t, loadedRev, err := c.source.Load(ctx)
	if err != nil {
		c.state = Transition(c.state, RefreshFailed)
		c.logger.Warn("tuning refresh failed, serving " + c.fallbackLabel() + ": " + err.Error())
		return c.current
	}

	c.current = t
	c.revision = loadedRev
	c.everGood = true
	c.state = Transition(c.state, RefreshSucceeded)
	c.logger.Info(fmt.Sprintf("tuning refreshed to revision %d", loadedRev))
	return c.current
}

// Freshness exposes the cache state for tests and diagnostics.
func (c *RevisionCache) Freshness() Freshness {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *RevisionCache) fallbackLabel() string {
	if c.everGood {
		return "previous tuning"
	}
	return "defaults"
}
