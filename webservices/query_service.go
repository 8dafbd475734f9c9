package webservices

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmapdal"
)

const maxQueryBodyBytes = 4 << 20

// QueryService runs Overpass queries and stores their results in the feature store.
type QueryService struct {
	logger                *logpkg.Logger
	featureStore          *ownmapdal.FeatureStore
	doer                  httpextra.Doer
	defaultInterpreterURL string
	maxConcurrent         uint
	metrics               *Metrics
	chi.Router
}

func NewQueryService(logger *logpkg.Logger, featureStore *ownmapdal.FeatureStore, doer httpextra.Doer, defaultInterpreterURL string, maxConcurrent uint, metrics *Metrics) *QueryService {
	qs := &QueryService{logger, featureStore, doer, defaultInterpreterURL, maxConcurrent, metrics, chi.NewRouter()}

	qs.Post("/", qs.handleExecute)
	qs.Post("/sections", qs.handleSplit)

	return qs
}

type queryResponseType struct {
	Name         string         `json:"name"`
	FeatureCount int            `json:"featureCount"`
	Bounds       orb.Bound      `json:"bounds"`
	Subparts     map[string]int `json:"subparts"`
}

func (qs *QueryService) handleExecute(w http.ResponseWriter, r *http.Request) {
	query, err := readBody(w, r, maxQueryBodyBytes)
	if err != nil {
		errorsx.HTTPJSONError(w, qs.logger, err, http.StatusBadRequest)
		return
	}

	if query == "" {
		errorsx.HTTPJSONError(w, qs.logger, errorsx.Errorf("empty query"), http.StatusBadRequest)
		return
	}

	var bounds *orb.Bound
	if bboxStr := r.URL.Query().Get("bbox"); bboxStr != "" {
		bbox, err := ownmap.ParseBBox(bboxStr)
		if err != nil {
			errorsx.HTTPJSONError(w, qs.logger, err, http.StatusBadRequest)
			return
		}
		bounds = &bbox
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "query-" + uuid.New().String()
	}

	interpreterURL := r.URL.Query().Get("interpreter")
	if interpreterURL == "" {
		interpreterURL = qs.defaultInterpreterURL
	}

	executor := ownmapdal.NewQueryExecutor(qs.logger, ownmapdal.NewOverpassClient(qs.doer, interpreterURL), qs.maxConcurrent)
	collection, err := executor.Execute(r.Context(), name, query, bounds)
	if err != nil {
		var overpassErr *ownmapdal.OverpassError
		if errors.As(errorsx.Cause(err), &overpassErr) {
			errorsx.HTTPJSONError(w, qs.logger, err, http.StatusBadGateway)
			return
		}
		errorsx.HTTPJSONError(w, qs.logger, err, http.StatusInternalServerError)
		return
	}

	qs.featureStore.Put(collection)

	subparts := make(map[string]int)
	for _, feature := range collection.Features {
		subparts[feature.Subpart()]++
	}
	for subpart, count := range subparts {
		qs.metrics.queriedFeatures.WithLabelValues(subpart).Add(float64(count))
	}

	render.JSON(w, r, queryResponseType{
		Name:         collection.Name,
		FeatureCount: len(collection.Features),
		Bounds:       collection.Bound(),
		Subparts:     subparts,
	})
}

func (qs *QueryService) handleSplit(w http.ResponseWriter, r *http.Request) {
	query, err := readBody(w, r, maxQueryBodyBytes)
	if err != nil {
		errorsx.HTTPJSONError(w, qs.logger, err, http.StatusBadRequest)
		return
	}

	render.JSON(w, r, ownmapdal.SplitQuerySubpart(query))
}
