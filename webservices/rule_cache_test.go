package webservices

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCache_Parse(t *testing.T) {
	metrics := NewMetrics()
	cache := newTestRuleCache(t, metrics)

	rules, err := cache.Parse(railStyle)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.ruleCacheLookups.WithLabelValues("miss")))

	// ristretto stores items asynchronously
	require.Eventually(t, func() bool {
		cachedRules, err := cache.Parse(railStyle)
		if err != nil || len(cachedRules) != 1 {
			return false
		}
		return testutil.ToFloat64(metrics.ruleCacheLookups.WithLabelValues("hit")) > 0
	}, time.Second, 10*time.Millisecond)
}

func TestRuleCache_Parse_errorsAreNotCached(t *testing.T) {
	metrics := NewMetrics()
	cache := newTestRuleCache(t, metrics)

	for i := 0; i < 3; i++ {
		_, err := cache.Parse("way { width: ")
		require.Error(t, err)
	}

	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.ruleCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.ruleCacheLookups.WithLabelValues("miss")))
}
