package styling

import (
	"image/color"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
)

const MapCSSFileSuffix = ".mapcss"

// MapCSSStyle styles features with a parsed MapCSS rule set.
type MapCSSStyle struct {
	styleID    string
	source     string
	rules      []*mapcss.Rule
	background color.Color
}

// NewMapCSSStyle parses the MapCSS text. Parse failures wrap a *mapcss.SyntaxError.
func NewMapCSSStyle(styleID, source string) (*MapCSSStyle, errorsx.Error) {
	rules, err := mapcss.Parse(source)
	if err != nil {
		return nil, errorsx.Wrap(err, "styleID", styleID)
	}

	return NewMapCSSStyleFromRules(styleID, source, rules), nil
}

func NewMapCSSStyleFromRules(styleID, source string, rules []*mapcss.Rule) *MapCSSStyle {
	return &MapCSSStyle{
		styleID:    styleID,
		source:     source,
		rules:      rules,
		background: canvasBackground(mapcss.EvaluateCanvas(rules)),
	}
}

// StyleIDFromFileName derives a style ID from a file name, "My Style.mapcss" becomes "my-style".
func StyleIDFromFileName(fileName string) string {
	return slug.Make(strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName)))
}

func canvasBackground(decls *mapcss.Declarations) color.Color {
	background := evaluateColor(decls, "fill-color", "fill-opacity")
	if background == nil {
		return color.White
	}
	return background
}

func (s *MapCSSStyle) GetStyleID() string {
	return s.styleID
}

func (s *MapCSSStyle) Source() string {
	return s.source
}

func (s *MapCSSStyle) Rules() []*mapcss.Rule {
	return s.rules
}

func (s *MapCSSStyle) GetBackground() color.Color {
	return s.background
}

func (s *MapCSSStyle) GetDeclarations(feature *ownmap.Feature, zoomLevel ownmap.ZoomLevel) *mapcss.Declarations {
	return mapcss.EvaluateRules(s.rules, mapcss.AtZoom(feature.StyleTarget(), float64(zoomLevel)))
}

func (s *MapCSSStyle) GetFeatureStyle(feature *ownmap.Feature, zoomLevel ownmap.ZoomLevel) *FeatureStyle {
	return NewFeatureStyle(s.GetDeclarations(feature, zoomLevel))
}
