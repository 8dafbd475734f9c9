package webservices

import (
	"github.com/dgraph-io/ristretto"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/simon04/OpenCartonaut/mapcss"
)

const DefaultRuleCacheSize = 256

// RuleCache keeps parsed rule sets keyed by their MapCSS source, so that a client
// re-evaluating the same style for many features parses it only once.
// Parsed rules are never mutated by evaluation, so they are shared between requests.
type RuleCache struct {
	cache   *ristretto.Cache
	metrics *Metrics
}

func NewRuleCache(maxEntries int64, metrics *Metrics) (*RuleCache, errorsx.Error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return &RuleCache{cache, metrics}, nil
}

// Parse returns the rules for the source. The error is the unwrapped one returned by mapcss.Parse.
func (c *RuleCache) Parse(source string) ([]*mapcss.Rule, error) {
	if value, ok := c.cache.Get(source); ok {
		c.metrics.ruleCacheLookups.WithLabelValues("hit").Inc()
		return value.([]*mapcss.Rule), nil
	}
	c.metrics.ruleCacheLookups.WithLabelValues("miss").Inc()

	rules, err := mapcss.Parse(source)
	if err != nil {
		return nil, err
	}

	c.cache.Set(source, rules, 1)
	return rules, nil
}

func (c *RuleCache) Close() {
	c.cache.Close()
}
