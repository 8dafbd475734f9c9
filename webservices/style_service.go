package webservices

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/gosimple/slug"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb/geojson"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/styling"
)

const maxStyleBodyBytes = 1 << 20

type StyleService struct {
	logger    *logpkg.Logger
	styleSet  *styling.StyleSet
	ruleCache *RuleCache
	metrics   *Metrics
	fs        gofs.Fs
	stylesDir string
	chi.Router
}

// NewStyleService creates the style service. If stylesDir is not empty, styles registered
// through the API are also written there, so they survive a restart.
func NewStyleService(logger *logpkg.Logger, styleSet *styling.StyleSet, ruleCache *RuleCache, metrics *Metrics, fs gofs.Fs, stylesDir string) *StyleService {
	ss := &StyleService{logger, styleSet, ruleCache, metrics, fs, stylesDir, chi.NewRouter()}

	ss.Get("/", ss.handleGetStyles)
	ss.Post("/parse", ss.handleParse)
	ss.Post("/evaluate", ss.handleEvaluate)
	ss.Post("/canvas", ss.handleCanvas)
	ss.Get("/{styleID}", ss.handleGetStyle)
	ss.Put("/{styleID}", ss.handlePutStyle)

	return ss
}

type stylesType struct {
	DefaultStyleID string   `json:"defaultStyleId"`
	StyleIDs       []string `json:"styleIds"`
}

func (ss *StyleService) handleGetStyles(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, stylesType{
		ss.styleSet.GetDefaultStyle().GetStyleID(),
		ss.styleSet.GetAllStyleIDs(),
	})
}

func (ss *StyleService) handleGetStyle(w http.ResponseWriter, r *http.Request) {
	styleID := chi.URLParam(r, "styleID")

	style, err := ss.styleSet.GetStyleByID(styleID)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusNotFound)
		return
	}

	mapcssStyle, ok := style.(*styling.MapCSSStyle)
	if !ok {
		errorsx.HTTPError(w, ss.logger, errorsx.Errorf("style %q has no MapCSS source", styleID), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write([]byte(mapcssStyle.Source()))
}

type parseResponseType struct {
	RuleCount int    `json:"ruleCount"`
	MapCSS    string `json:"mapcss"`
}

func (ss *StyleService) handleParse(w http.ResponseWriter, r *http.Request) {
	source, err := readBody(w, r, maxStyleBodyBytes)
	if err != nil {
		errorsx.HTTPError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	rules, parseErr := ss.ruleCache.Parse(source)
	if parseErr != nil {
		writeStyleError(w, r, ss.logger, parseErr)
		return
	}

	render.JSON(w, r, parseResponseType{len(rules), mapcss.Format(rules)})
}

type evaluateRequestType struct {
	MapCSS  string          `json:"mapcss"`
	StyleID string          `json:"styleId"`
	Feature json.RawMessage `json:"feature"`
	Subpart string          `json:"subpart"`
	Zoom    *float64        `json:"zoom"`
}

type evaluateResponseType struct {
	Declarations *mapcss.Declarations  `json:"declarations"`
	Style        *styling.FeatureStyle `json:"style"`
}

// rulesFor returns the rules of the inline MapCSS, or else of the stored style.
func (ss *StyleService) rulesFor(source, styleID string) ([]*mapcss.Rule, error) {
	if source != "" || styleID == "" {
		return ss.ruleCache.Parse(source)
	}

	style, err := ss.styleSet.GetStyleByID(styleID)
	if err != nil {
		return nil, err
	}

	mapcssStyle, ok := style.(*styling.MapCSSStyle)
	if !ok {
		return nil, errorsx.Errorf("style %q has no MapCSS rules", styleID)
	}

	return mapcssStyle.Rules(), nil
}

func (ss *StyleService) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequestType
	err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxStyleBodyBytes), &req)
	if err != nil {
		errorsx.HTTPJSONError(w, ss.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	if len(req.Feature) == 0 {
		errorsx.HTTPJSONError(w, ss.logger, errorsx.Errorf("no feature given"), http.StatusBadRequest)
		return
	}

	geojsonFeature, err := geojson.UnmarshalFeature(req.Feature)
	if err != nil {
		errorsx.HTTPJSONError(w, ss.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	rules, err := ss.rulesFor(req.MapCSS, req.StyleID)
	if err != nil {
		if errorsx.Cause(err) == styling.ErrStyleNotFound {
			errorsx.HTTPJSONError(w, ss.logger, errorsx.Wrap(err), http.StatusNotFound)
			return
		}
		writeStyleError(w, r, ss.logger, err)
		return
	}

	endSpan := ownmap.StartSpan(r.Context(), "evaluate style")
	feature := ownmap.NewFeatureFromGeoJSON(geojsonFeature, req.Subpart, 0)
	target := feature.StyleTarget()
	if req.Zoom != nil {
		target = mapcss.AtZoom(target, *req.Zoom)
	}
	declarations := mapcss.EvaluateRules(rules, target)
	endSpan()

	ss.metrics.styleEvaluations.Inc()

	render.JSON(w, r, evaluateResponseType{declarations, styling.NewFeatureStyle(declarations)})
}

type canvasRequestType struct {
	MapCSS string `json:"mapcss"`
}

type canvasResponseType struct {
	Declarations *mapcss.Declarations `json:"declarations"`
	Background   string               `json:"background"`
}

func (ss *StyleService) handleCanvas(w http.ResponseWriter, r *http.Request) {
	var req canvasRequestType
	err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxStyleBodyBytes), &req)
	if err != nil {
		errorsx.HTTPJSONError(w, ss.logger, errorsx.Wrap(err), http.StatusBadRequest)
		return
	}

	rules, err := ss.ruleCache.Parse(req.MapCSS)
	if err != nil {
		writeStyleError(w, r, ss.logger, err)
		return
	}

	style := styling.NewMapCSSStyleFromRules("", req.MapCSS, rules)
	render.JSON(w, r, canvasResponseType{
		mapcss.EvaluateCanvas(rules),
		styling.FormatColor(style.GetBackground()),
	})
}

func (ss *StyleService) handlePutStyle(w http.ResponseWriter, r *http.Request) {
	styleID := chi.URLParam(r, "styleID")
	if !slug.IsSlug(styleID) {
		errorsx.HTTPJSONError(w, ss.logger, errorsx.Errorf("style ID %q should be a slug, for example %q", styleID, slug.Make(styleID)), http.StatusBadRequest)
		return
	}

	source, err := readBody(w, r, maxStyleBodyBytes)
	if err != nil {
		errorsx.HTTPJSONError(w, ss.logger, err, http.StatusBadRequest)
		return
	}

	rules, parseErr := ss.ruleCache.Parse(source)
	if parseErr != nil {
		writeStyleError(w, r, ss.logger, parseErr)
		return
	}

	if ss.stylesDir != "" {
		filePath := filepath.Join(ss.stylesDir, styleID+styling.MapCSSFileSuffix)
		err = errorsx.Wrap(ss.fs.WriteFile(filePath, []byte(source), 0644), "filePath", filePath)
		if err != nil {
			errorsx.HTTPJSONError(w, ss.logger, err, http.StatusInternalServerError)
			return
		}
	}

	ss.styleSet.PutStyle(styling.NewMapCSSStyleFromRules(styleID, source, rules))
	ss.logger.Info("registered style %q (%d rules)", styleID, len(rules))

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, parseResponseType{len(rules), mapcss.Format(rules)})
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, errorsx.Error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
	if err != nil {
		return "", errorsx.Wrap(err)
	}
	return string(body), nil
}
