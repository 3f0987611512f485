// Package cache fronts aggregation results and generated insights with a
// TTL-bounded key-value store. It is never the source of truth: every ledger
// mutation synchronously drops all of the affected user's keys before the
// mutation call returns, and the TTL is only a backstop for invalidation
// paths that were missed.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Resource kinds cached per user.
const (
	KindDashboardStats = "dashboard-stats"
	KindInsights       = "ai-insights"
	KindHistory        = "transaction-history"
)

var kinds = []string{KindDashboardStats, KindInsights, KindHistory}

type TTLs struct {
	Dashboard time.Duration
	Insights  time.Duration
	History   time.Duration
}

// DefaultTTLs mirror the production configuration defaults.
func DefaultTTLs() TTLs {
	return TTLs{
		Dashboard: 5 * time.Minute,
		Insights:  time.Hour,
		History:   10 * time.Minute,
	}
}

type Cache struct {
	store *gocache.Cache
	ttls  TTLs
}

func New(ttls TTLs) *Cache {
	return &Cache{
		store: gocache.New(gocache.NoExpiration, time.Minute),
		ttls:  ttls,
	}
}

func key(kind, uid string) string {
	return kind + ":" + uid
}

func (c *Cache) Get(kind, uid string) (any, bool) {
	return c.store.Get(key(kind, uid))
}

func (c *Cache) Set(kind, uid string, value any) {
	c.store.Set(key(kind, uid), value, c.ttl(kind))
}

// InvalidateUser drops every cached kind for the user. Callers invoke this
// synchronously after each successful ledger mutation.
func (c *Cache) InvalidateUser(uid string) {
	for _, kind := range kinds {
		c.store.Delete(key(kind, uid))
	}
}

func (c *Cache) ttl(kind string) time.Duration {
	switch kind {
	case KindDashboardStats:
		return c.ttls.Dashboard
	case KindInsights:
		return c.ttls.Insights
	case KindHistory:
		return c.ttls.History
	}
	return gocache.DefaultExpiration
}
