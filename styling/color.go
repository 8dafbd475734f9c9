package styling

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"golang.org/x/image/colornames"
)

// ParseColor parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa", "rgb(r,g,b)",
// "rgba(r,g,b,a)" and CSS color names.
func ParseColor(s string) (color.NRGBA, errorsx.Error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHexColor(s)
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseColorFunction(s, s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseColorFunction(s, s[len("rgb("):len(s)-1], 3)
	case s == "transparent":
		return color.NRGBA{}, nil
	}

	c, ok := colornames.Map[s]
	if !ok {
		return color.NRGBA{}, errorsx.Errorf("unknown color %q", s)
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}, nil
}

func parseHexColor(s string) (color.NRGBA, errorsx.Error) {
	hex := s[1:]

	var digits []uint8
	for _, r := range hex {
		d, ok := hexDigit(r)
		if !ok {
			return color.NRGBA{}, errorsx.Errorf("invalid hex color %q", s)
		}
		digits = append(digits, d)
	}

	switch len(digits) {
	case 3, 4:
		c := color.NRGBA{R: digits[0] * 17, G: digits[1] * 17, B: digits[2] * 17, A: 255}
		if len(digits) == 4 {
			c.A = digits[3] * 17
		}
		return c, nil
	case 6, 8:
		c := color.NRGBA{
			R: digits[0]<<4 | digits[1],
			G: digits[2]<<4 | digits[3],
			B: digits[4]<<4 | digits[5],
			A: 255,
		}
		if len(digits) == 8 {
			c.A = digits[6]<<4 | digits[7]
		}
		return c, nil
	}

	return color.NRGBA{}, errorsx.Errorf("invalid hex color %q", s)
}

func hexDigit(r rune) (uint8, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint8(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint8(r-'a') + 10, true
	}
	return 0, false
}

func parseColorFunction(s, args string, want int) (color.NRGBA, errorsx.Error) {
	fragments := strings.Split(args, ",")
	if len(fragments) != want {
		return color.NRGBA{}, errorsx.Errorf("expected %d arguments in color %q", want, s)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		fragment := strings.TrimSpace(fragments[i])
		isPercentage := strings.HasSuffix(fragment, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(fragment, "%"), 64)
		if err != nil {
			return color.NRGBA{}, errorsx.Wrap(err, "color", s)
		}
		if isPercentage {
			f = f * 255 / 100
		}
		channels[i] = clampChannel(f)
	}

	c := color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}
	if want == 4 {
		alpha, err := strconv.ParseFloat(strings.TrimSpace(fragments[3]), 64)
		if err != nil {
			return color.NRGBA{}, errorsx.Wrap(err, "color", s)
		}
		c.A = clampChannel(alpha * 255)
	}
	return c, nil
}

func clampChannel(f float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(255, f))))
}

// WithOpacity replaces the alpha channel; opacity is clamped to 0..1.
func WithOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = clampChannel(opacity * 255)
	return c
}

// FormatColor formats c as "rgba(r,g,b,a)", or "" for a nil color.
func FormatColor(c color.Color) string {
	if c == nil {
		return ""
	}
	nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
	return "rgba(" +
		strconv.Itoa(int(nrgba.R)) + "," +
		strconv.Itoa(int(nrgba.G)) + "," +
		strconv.Itoa(int(nrgba.B)) + "," +
		strconv.FormatFloat(math.Round(float64(nrgba.A)/255*1000)/1000, 'f', -1, 64) + ")"
}
