package webservices

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
)

const defaultFeatureZoom = 16

// FeatureService lists the stored features in an area, optionally with their evaluated style.
type FeatureService struct {
	logger       *logpkg.Logger
	featureStore *ownmapdal.FeatureStore
	styleSet     *styling.StyleSet
	metrics      *Metrics
	chi.Router
}

func NewFeatureService(logger *logpkg.Logger, featureStore *ownmapdal.FeatureStore, styleSet *styling.StyleSet, metrics *Metrics) *FeatureService {
	router := chi.NewRouter()
	service := &FeatureService{logger, featureStore, styleSet, metrics, router}

	router.Get("/", service.handleGet)
	return service
}

type featureType struct {
	ID           string                `json:"id"`
	Type         string                `json:"type"`
	Subpart      string                `json:"subpart"`
	Tags         ownmap.TagMap         `json:"tags"`
	Geometry     *geojson.Geometry     `json:"geometry"`
	Declarations *mapcss.Declarations  `json:"declarations,omitempty"`
	Style        *styling.FeatureStyle `json:"style,omitempty"`
}

type getFeaturesResponseType struct {
	Features []*featureType `json:"features"`
}

func (s *FeatureService) handleGet(w http.ResponseWriter, r *http.Request) {
	bounds, err := parseBoundsString(r.URL.Query().Get("bounds"))
	if err != nil {
		errorsx.HTTPJSONError(w, s.logger, err, http.StatusBadRequest)
		return
	}

	var style styling.Style
	if styleID := r.URL.Query().Get("styleId"); styleID != "" {
		style, err = s.styleSet.GetStyleByID(styleID)
		if err != nil {
			errorsx.HTTPJSONError(w, s.logger, err, http.StatusNotFound)
			return
		}
	}

	zoom := ownmap.ZoomLevel(defaultFeatureZoom)
	if zoomStr := r.URL.Query().Get("zoom"); zoomStr != "" {
		zoomValue, parseErr := strconv.ParseFloat(zoomStr, 64)
		if parseErr != nil || zoomValue < float64(ownmap.MinZoomLevel) || zoomValue > float64(ownmap.MaxZoomLevel) {
			errorsx.HTTPJSONError(w, s.logger, errorsx.Errorf("invalid zoom level %q", zoomStr), http.StatusBadRequest)
			return
		}
		zoom = ownmap.ZoomLevel(zoomValue)
	}

	features, err := s.featureStore.GetInBounds(bounds)
	if err != nil {
		if errorsx.Cause(err) == ownmapdal.ErrNoDataAvailable {
			render.JSON(w, r, getFeaturesResponseType{Features: []*featureType{}})
			return
		}
		errorsx.HTTPJSONError(w, s.logger, err, http.StatusInternalServerError)
		return
	}

	endSpan := ownmap.StartSpan(r.Context(), "list features")
	defer endSpan()

	response := getFeaturesResponseType{Features: make([]*featureType, 0, len(features))}
	for _, feature := range features {
		item := &featureType{
			ID:      feature.ID,
			Type:    feature.ObjectType.String(),
			Subpart: feature.Subpart(),
			Tags:    feature.Tags,
		}
		if feature.Geometry != nil {
			item.Geometry = geojson.NewGeometry(feature.Geometry)
		}

		if style != nil {
			item.Declarations = style.GetDeclarations(feature, zoom)
			item.Style = styling.NewFeatureStyle(item.Declarations)
			s.metrics.styleEvaluations.Inc()
		}

		response.Features = append(response.Features, item)
	}

	render.JSON(w, r, response)
}

// parseBoundsString accepts "minLon,minLat,maxLon,maxLat", or the Overpass
// ordering in brackets: "(S,W,N,E)", for example "(52.533251,-1.394072,52.800548,-0.898208)".
func parseBoundsString(boundsString string) (orb.Bound, errorsx.Error) {
	if boundsString == "" {
		return orb.Bound{}, errorsx.Errorf("no bounds given. Expected 'bounds=minLon,minLat,maxLon,maxLat'")
	}

	if !strings.HasPrefix(boundsString, "(") {
		return ownmap.ParseBBox(boundsString)
	}

	withoutBrackets := strings.TrimPrefix(strings.TrimSuffix(boundsString, ")"), "(")
	fragments := strings.Split(withoutBrackets, ",")
	if len(fragments) != 4 {
		return orb.Bound{}, errorsx.Errorf("expected 4 bounds, but got %d. A bracketed bounds URL parameter should be in the format 'bounds=(S,W,N,E)'", len(fragments))
	}

	// reorder to minLon,minLat,maxLon,maxLat
	return ownmap.ParseBBox(strings.Join([]string{fragments[1], fragments[0], fragments[3], fragments[2]}, ","))
}
