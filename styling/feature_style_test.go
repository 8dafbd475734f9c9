package styling

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declarations(kv ...interface{}) *mapcss.Declarations {
	decls := mapcss.NewDeclarations()
	for i := 0; i < len(kv); i += 2 {
		decls.Set(kv[i].(string), kv[i+1].(mapcss.Value))
	}
	return decls
}

func TestNewFeatureStyle_empty(t *testing.T) {
	assert.Nil(t, NewFeatureStyle(nil))
	assert.Nil(t, NewFeatureStyle(mapcss.NewDeclarations()))
}

func TestNewFeatureStyle(t *testing.T) {
	tests := []struct {
		name  string
		decls *mapcss.Declarations
		want  *FeatureStyle
	}{
		{
			name: "fill with opacity override",
			decls: declarations(
				"fill-color", mapcss.String("#ff8800"),
				"fill-opacity", mapcss.Number(0.5),
				"z-index", mapcss.Number(-1),
			),
			want: &FeatureStyle{
				ZIndex: -1,
				Fill:   &Fill{Color: color.NRGBA{R: 255, G: 136, A: 128}},
			},
		}, {
			name: "string opacity does not override",
			decls: declarations(
				"fill-color", mapcss.String("#ff8800"),
				"fill-opacity", mapcss.String("0.5"),
			),
			want: &FeatureStyle{
				Fill: &Fill{Color: color.NRGBA{R: 255, G: 136, A: 255}},
			},
		}, {
			name: "stroke with dashes",
			decls: declarations(
				"color", mapcss.String("rgb(0,0,255)"),
				"width", mapcss.Number(3),
				"dashes", mapcss.Vector(8, 4),
				"dashes-offset", mapcss.Number(2),
			),
			want: &FeatureStyle{
				Stroke: &Stroke{
					Color:        color.NRGBA{B: 255, A: 255},
					Width:        3,
					Dashes:       []float64{8, 4},
					DashesOffset: 2,
				},
			},
		}, {
			name: "stroke needs a truthy width",
			decls: declarations(
				"color", mapcss.String("red"),
				"width", mapcss.Number(0),
			),
			want: &FeatureStyle{},
		}, {
			name: "unparseable color",
			decls: declarations(
				"color", mapcss.String("bogus"),
				"width", mapcss.Number(1),
			),
			want: &FeatureStyle{
				Stroke: &Stroke{Width: 1},
			},
		}, {
			name: "marker reuses fill and stroke",
			decls: declarations(
				"icon-width", mapcss.Number(5),
				"fill-color", mapcss.String("white"),
				"color", mapcss.String("black"),
				"width", mapcss.Number(1),
			),
			want: &FeatureStyle{
				Fill:   &Fill{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
				Stroke: &Stroke{Color: color.NRGBA{A: 255}, Width: 1},
				Marker: &Marker{
					Radius: 5,
					Fill:   &Fill{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}},
					Stroke: &Stroke{Color: color.NRGBA{A: 255}, Width: 1},
				},
			},
		}, {
			name:  "unknown keys only",
			decls: declarations("foo", mapcss.String("bar")),
			want:  &FeatureStyle{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFeatureStyle(tt.decls))
		})
	}
}

func TestNewFeatureStyle_label(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		style := NewFeatureStyle(declarations("text", mapcss.String("Gars-Thunau")))
		require.NotNil(t, style.Label)
		assert.Equal(t, &Label{
			Text:     "Gars-Thunau",
			Fill:     &Fill{Color: defaultTextColor},
			Font:     "10px sans-serif",
			FontSize: 10,
		}, style.Label)
	})

	t.Run("font size and family", func(t *testing.T) {
		style := NewFeatureStyle(declarations(
			"text", mapcss.Number(12),
			"text-color", mapcss.String("#222"),
			"text-opacity", mapcss.Number(1),
			"text-halo-color", mapcss.String("white"),
			"text-halo-radius", mapcss.Number(2),
			"font-size", mapcss.Number(14),
			"font-family", mapcss.String("serif"),
			"text-anchor-horizontal", mapcss.String("center"),
			"text-anchor-vertical", mapcss.String("top"),
			"text-offset-x", mapcss.Number(3),
			"text-offset-y", mapcss.Number(-12),
			"text-rotation", mapcss.Number(0.5),
			"text-position", mapcss.String("line"),
		))
		require.NotNil(t, style.Label)
		assert.Equal(t, &Label{
			Text:             "12",
			Fill:             &Fill{Color: color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 255}},
			Halo:             &Stroke{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}, Width: 2},
			Font:             "14px serif",
			FontSize:         14,
			HorizontalAnchor: "center",
			VerticalAnchor:   "top",
			OffsetX:          3,
			OffsetY:          -12,
			Rotation:         0.5,
			Placement:        "line",
		}, style.Label)
	})

	t.Run("font shorthand", func(t *testing.T) {
		style := NewFeatureStyle(declarations(
			"text", mapcss.Vector(1, 2),
			"font", mapcss.String("italic bold 16.5px/2 cursive"),
		))
		require.NotNil(t, style.Label)
		assert.Equal(t, "1,2", style.Label.Text)
		assert.Equal(t, "italic bold 16.5px/2 cursive", style.Label.Font)
		assert.Equal(t, 16.5, style.Label.FontSize)
	})

	t.Run("font shorthand in points", func(t *testing.T) {
		style := NewFeatureStyle(declarations(
			"text", mapcss.String("Gars-Thunau"),
			"font", mapcss.String("bold 12pt / 1.0 Noto Sans"),
		))
		require.NotNil(t, style.Label)
		assert.Equal(t, "bold 12pt / 1.0 Noto Sans", style.Label.Font)
		assert.Equal(t, float64(16), style.Label.FontSize)
	})
}

func TestFeatureStyle_MarshalJSON(t *testing.T) {
	style := NewFeatureStyle(declarations(
		"fill-color", mapcss.String("#ff8800"),
		"color", mapcss.String("#000"),
		"width", mapcss.Number(2),
	))

	b, err := json.Marshal(style)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"zIndex": 0,
		"fill": {"color": "rgba(255,136,0,1)"},
		"stroke": {"color": "rgba(0,0,0,1)", "width": 2}
	}`, string(b))
}
