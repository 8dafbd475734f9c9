package webservices

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
	"github.com/stretchr/testify/require"
)

const townsGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "id": "node/1",
      "properties": { "name": "Gars am Kamp", "place": "town" },
      "geometry": { "type": "Point", "coordinates": [15.6594592, 48.5951053] }
    },
    {
      "type": "Feature",
      "id": "way/2",
      "properties": { "railway": "rail" },
      "geometry": { "type": "LineString", "coordinates": [[15.60, 48.55], [15.70, 48.62]] }
    }
  ]
}`

var garsPoint = orb.Point{15.6594592, 48.5951053}

func newTestLogger() *logpkg.Logger {
	return logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug)
}

func newTestStyleSet(t *testing.T, styles ...styling.Style) *styling.StyleSet {
	t.Helper()
	styleSet, err := styling.NewStyleSet(append([]styling.Style{styling.NewBuiltinStyle()}, styles...), styling.BUILTIN_STYLEID)
	require.NoError(t, err)
	return styleSet
}

func newTestFeatureStore(t *testing.T) *ownmapdal.FeatureStore {
	t.Helper()
	features, err := ownmapdal.ReadGeoJSON([]byte(townsGeoJSON), "town")
	require.NoError(t, err)

	featureStore := ownmapdal.NewFeatureStore()
	featureStore.Put(ownmap.NewFeatureCollection("gars", features))
	return featureStore
}

func newTestRuleCache(t *testing.T, metrics *Metrics) *RuleCache {
	t.Helper()
	ruleCache, err := NewRuleCache(DefaultRuleCacheSize, metrics)
	require.NoError(t, err)
	t.Cleanup(ruleCache.Close)
	return ruleCache
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, bodyReader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}
