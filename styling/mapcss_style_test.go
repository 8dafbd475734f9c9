package styling

import (
	"errors"
	"image/color"
	"testing"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapCSSStyle_syntaxError(t *testing.T) {
	_, err := NewMapCSSStyle("broken", "way { color: red; }\n\nfoo { width: 2; }")
	require.Error(t, err)

	var syntaxErr *mapcss.SyntaxError
	require.True(t, errors.As(errorsx.Cause(err), &syntaxErr))
	assert.Equal(t, 3, syntaxErr.Line)
	assert.Equal(t, 1, syntaxErr.Column)
}

func TestMapCSSStyle_GetBackground(t *testing.T) {
	assert.Equal(t, color.White, mustStyle(t, "plain", "way { width: 1; }").GetBackground())
	assert.Equal(t,
		color.NRGBA{R: 0, G: 0, B: 0, A: 128},
		mustStyle(t, "dark", "canvas { fill-color: black; fill-opacity: 0.5; }").GetBackground(),
	)
}

func TestMapCSSStyle_GetFeatureStyle(t *testing.T) {
	style := mustStyle(t, "test", `
way[highway] { set road; }
way.road { color: #fff; width: 2; }
way.road|z14- { width: 4; text: name; }
node { icon-width: 3; fill-color: red; }
`)

	road := ownmap.NewFeature("way/1", ownmap.ObjectTypeWay, orb.LineString{{0, 0}, {1, 1}}, ownmap.TagMap{"highway": "primary", "name": "B34"}, "")

	featureStyle := style.GetFeatureStyle(road, 12)
	require.NotNil(t, featureStyle)
	assert.Equal(t, float64(2), featureStyle.Stroke.Width)
	assert.Nil(t, featureStyle.Label)

	featureStyle = style.GetFeatureStyle(road, 15)
	require.NotNil(t, featureStyle)
	assert.Equal(t, float64(4), featureStyle.Stroke.Width)
	require.NotNil(t, featureStyle.Label)
	assert.Equal(t, "B34", featureStyle.Label.Text)

	// classes are set on a per-evaluation view, not on the shared feature
	assert.Empty(t, road.Classes())

	area := ownmap.NewFeature("way/2", ownmap.ObjectTypeWay, orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}, ownmap.TagMap{"landuse": "meadow"}, "")
	assert.Nil(t, style.GetFeatureStyle(area, 15))

	point := ownmap.NewFeature("node/3", ownmap.ObjectTypeNode, orb.Point{0, 0}, nil, "")
	featureStyle = style.GetFeatureStyle(point, 15)
	require.NotNil(t, featureStyle)
	require.NotNil(t, featureStyle.Marker)
	assert.Equal(t, float64(3), featureStyle.Marker.Radius)
}

func TestBuiltinStyle(t *testing.T) {
	style := NewBuiltinStyle()
	assert.Equal(t, BUILTIN_STYLEID, style.GetStyleID())
	assert.Equal(t, color.NRGBA{R: 0xf8, G: 0xf4, B: 0xf0, A: 0xff}, style.GetBackground())

	town := ownmap.NewFeature("feature/0", ownmap.ObjectTypeUnknown, orb.Point{15.6594592, 48.5951053}, ownmap.TagMap{"name": "Gars am Kamp", "place": "town"}, "town")
	featureStyle := style.GetFeatureStyle(town, 14)
	require.NotNil(t, featureStyle)
	require.NotNil(t, featureStyle.Label)
	assert.Equal(t, "Gars am Kamp", featureStyle.Label.Text)
	assert.Equal(t, "14px sans-serif", featureStyle.Label.Font)
	require.NotNil(t, featureStyle.Marker)
	assert.Equal(t, float64(20), featureStyle.ZIndex)

	boundary := ownmap.NewFeature("way/5", ownmap.ObjectTypeWay, orb.LineString{{15.6, 48.5}, {15.7, 48.6}}, ownmap.TagMap{"boundary": "administrative"}, "foreground")
	featureStyle = style.GetFeatureStyle(boundary, 14)
	require.NotNil(t, featureStyle)
	assert.Equal(t, []float64{8, 4}, featureStyle.Stroke.Dashes)

	untagged := ownmap.NewFeature("node/6", ownmap.ObjectTypeNode, orb.Point{15.6, 48.5}, nil, "")
	assert.Nil(t, style.GetFeatureStyle(untagged, 14))
}
