package styling

import (
	"encoding/json"
	"image/color"
	"regexp"
	"strconv"

	"github.com/simon04/OpenCartonaut/mapcss"
)

const (
	defaultFontSize   = 10
	defaultFontFamily = "sans-serif"
)

var (
	defaultTextColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}

	fontSizeRegexp = regexp.MustCompile(`(\d+(?:\.\d+)?)(px|pt)\b`)
)

type Fill struct {
	Color color.Color
}

func (f *Fill) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Color string `json:"color,omitempty"`
	}{FormatColor(f.Color)})
}

type Stroke struct {
	Color        color.Color
	Width        float64
	Dashes       []float64
	DashesOffset float64
}

func (s *Stroke) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Color        string    `json:"color,omitempty"`
		Width        float64   `json:"width"`
		Dashes       []float64 `json:"dashes,omitempty"`
		DashesOffset float64   `json:"dashesOffset,omitempty"`
	}{FormatColor(s.Color), s.Width, s.Dashes, s.DashesOffset})
}

// Marker is a circle drawn at point geometries.
type Marker struct {
	Radius float64 `json:"radius"`
	Fill   *Fill   `json:"fill,omitempty"`
	Stroke *Stroke `json:"stroke,omitempty"`
}

type Label struct {
	Text             string  `json:"text"`
	Fill             *Fill   `json:"fill"`
	Halo             *Stroke `json:"halo,omitempty"`
	Font             string  `json:"font"`
	FontSize         float64 `json:"fontSize"`
	HorizontalAnchor string  `json:"horizontalAnchor,omitempty"`
	VerticalAnchor   string  `json:"verticalAnchor,omitempty"`
	OffsetX          float64 `json:"offsetX,omitempty"`
	OffsetY          float64 `json:"offsetY,omitempty"`
	Rotation         float64 `json:"rotation,omitempty"`
	Placement        string  `json:"placement,omitempty"`
}

// FeatureStyle holds the paint primitives synthesized from a declaration map.
type FeatureStyle struct {
	ZIndex float64 `json:"zIndex"`
	Fill   *Fill   `json:"fill,omitempty"`
	Stroke *Stroke `json:"stroke,omitempty"`
	Marker *Marker `json:"marker,omitempty"`
	Label  *Label  `json:"label,omitempty"`
}

func (fs *FeatureStyle) GetZIndex() float64 {
	return fs.ZIndex
}

// NewFeatureStyle synthesizes paint primitives. It returns nil for an empty declaration map.
func NewFeatureStyle(decls *mapcss.Declarations) *FeatureStyle {
	if decls == nil || decls.IsEmpty() {
		return nil
	}

	style := &FeatureStyle{
		ZIndex: number(decls, "z-index"),
	}

	if truthy(decls, "fill-color") {
		style.Fill = &Fill{Color: evaluateColor(decls, "fill-color", "fill-opacity")}
	}

	if truthy(decls, "width") {
		style.Stroke = &Stroke{
			Color:        evaluateColor(decls, "color", "opacity"),
			Width:        number(decls, "width"),
			Dashes:       numbers(decls, "dashes"),
			DashesOffset: number(decls, "dashes-offset"),
		}
	}

	if truthy(decls, "icon-width") {
		style.Marker = &Marker{
			Radius: number(decls, "icon-width"),
			Fill:   style.Fill,
			Stroke: style.Stroke,
		}
	}

	if truthy(decls, "text") {
		style.Label = newLabel(decls)
	}

	return style
}

func newLabel(decls *mapcss.Declarations) *Label {
	text, _ := decls.Get("text")

	textColor := evaluateColor(decls, "text-color", "text-opacity")
	if textColor == nil {
		textColor = defaultTextColor
	}

	label := &Label{
		Text:             text.String(),
		Fill:             &Fill{Color: textColor},
		HorizontalAnchor: str(decls, "text-anchor-horizontal"),
		VerticalAnchor:   str(decls, "text-anchor-vertical"),
		OffsetX:          number(decls, "text-offset-x"),
		OffsetY:          number(decls, "text-offset-y"),
		Rotation:         number(decls, "text-rotation"),
		Placement:        str(decls, "text-position"),
		FontSize:         defaultFontSize,
	}

	if truthy(decls, "text-halo-radius") {
		label.Halo = &Stroke{
			Color: evaluateColor(decls, "text-halo-color", "text-halo-opacity"),
			Width: number(decls, "text-halo-radius"),
		}
	}

	switch {
	case truthy(decls, "font"):
		label.Font = str(decls, "font")
		if match := fontSizeRegexp.FindStringSubmatch(label.Font); match != nil {
			size, err := strconv.ParseFloat(match[1], 64)
			if err == nil {
				if match[2] == "pt" {
					// 72pt to the inch, 96px to the inch
					size = size * 4 / 3
				}
				label.FontSize = size
			}
		}
	case truthy(decls, "font-size") && truthy(decls, "font-family"):
		label.FontSize = number(decls, "font-size")
		label.Font = str(decls, "font-size") + "px " + str(decls, "font-family")
	default:
		if truthy(decls, "font-size") {
			label.FontSize = number(decls, "font-size")
		}
		label.Font = strconv.FormatFloat(label.FontSize, 'f', -1, 64) + "px " + defaultFontFamily
	}

	return label
}

// evaluateColor returns nil when the color is absent or unparseable. A numeric
// opacity declaration overrides the alpha channel.
func evaluateColor(decls *mapcss.Declarations, colorKey, opacityKey string) color.Color {
	if !truthy(decls, colorKey) {
		return nil
	}

	c, err := ParseColor(str(decls, colorKey))
	if err != nil {
		return nil
	}

	opacity, ok := decls.Get(opacityKey)
	if ok && opacity.Kind() == mapcss.KindNumber {
		f, _ := opacity.Float64()
		c = WithOpacity(c, f)
	}
	return c
}

func truthy(decls *mapcss.Declarations, key string) bool {
	v, ok := decls.Get(key)
	return ok && v.Truthy()
}

func str(decls *mapcss.Declarations, key string) string {
	v, _ := decls.Get(key)
	return v.String()
}

func number(decls *mapcss.Declarations, key string) float64 {
	v, ok := decls.Get(key)
	if !ok {
		return 0
	}
	f, _ := v.Float64()
	return f
}

func numbers(decls *mapcss.Declarations, key string) []float64 {
	v, ok := decls.Get(key)
	if !ok {
		return nil
	}
	floats, _ := v.Floats()
	return floats
}
