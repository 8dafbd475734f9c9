package webservices

import (
	"net/http"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type featuresJSON struct {
	Features []struct {
		ID           string                 `json:"id"`
		Type         string                 `json:"type"`
		Subpart      string                 `json:"subpart"`
		Tags         map[string]string      `json:"tags"`
		Geometry     map[string]interface{} `json:"geometry"`
		Declarations map[string]interface{} `json:"declarations"`
		Style        *featureStyleJSON      `json:"style"`
	} `json:"features"`
}

func TestFeatureService_get(t *testing.T) {
	fs := NewFeatureService(newTestLogger(), newTestFeatureStore(t), newTestStyleSet(t), NewMetrics())

	t.Run("without style", func(t *testing.T) {
		rec := doRequest(t, fs, http.MethodGet, "/?bounds=15.65,48.59,15.67,48.60", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp featuresJSON
		decodeJSON(t, rec, &resp)
		require.Len(t, resp.Features, 2)

		town := resp.Features[0]
		assert.Equal(t, "node/1", town.ID)
		assert.Equal(t, "node", town.Type)
		assert.Equal(t, "town", town.Subpart)
		assert.Equal(t, map[string]string{"name": "Gars am Kamp", "place": "town"}, town.Tags)
		assert.Equal(t, "Point", town.Geometry["type"])
		assert.Nil(t, town.Style)
	})

	t.Run("with style", func(t *testing.T) {
		rec := doRequest(t, fs, http.MethodGet, "/?bounds=(48.59,15.65,48.60,15.67)&styleId=default&zoom=14", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp featuresJSON
		decodeJSON(t, rec, &resp)
		require.Len(t, resp.Features, 2)

		town := resp.Features[0]
		require.NotNil(t, town.Style)
		assert.Equal(t, float64(20), town.Style.ZIndex)
		assert.Equal(t, "Gars am Kamp", town.Declarations["text"])
	})

	t.Run("outside of the data", func(t *testing.T) {
		rec := doRequest(t, fs, http.MethodGet, "/?bounds=0,0,1,1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp featuresJSON
		decodeJSON(t, rec, &resp)
		assert.Empty(t, resp.Features)
	})
}

func TestFeatureService_get_errors(t *testing.T) {
	fs := NewFeatureService(newTestLogger(), newTestFeatureStore(t), newTestStyleSet(t), NewMetrics())

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"no bounds", "/", http.StatusBadRequest},
		{"three numbers", "/?bounds=1,2,3", http.StatusBadRequest},
		{"unknown style", "/?bounds=0,0,1,1&styleId=nope", http.StatusNotFound},
		{"bad zoom", "/?bounds=0,0,1,1&zoom=30", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, fs, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func Test_parseBoundsString(t *testing.T) {
	want := orb.Bound{Min: orb.Point{-1.394072, 52.533251}, Max: orb.Point{-0.898208, 52.800548}}

	bound, err := parseBoundsString("(52.533251,-1.394072,52.800548,-0.898208)")
	require.NoError(t, err)
	assert.Equal(t, want, bound)

	bound, err = parseBoundsString("-1.394072,52.533251,-0.898208,52.800548")
	require.NoError(t, err)
	assert.Equal(t, want, bound)

	_, err = parseBoundsString("(1,2,3)")
	assert.Error(t, err)
}
