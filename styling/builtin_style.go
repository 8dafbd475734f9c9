package styling

import (
	_ "embed"
)

const BUILTIN_STYLEID = "default"

//go:embed default.mapcss
var DefaultMapCSS string

// NewBuiltinStyle returns the style compiled into the binary. It is always part of the style set.
func NewBuiltinStyle() *MapCSSStyle {
	style, err := NewMapCSSStyle(BUILTIN_STYLEID, DefaultMapCSS)
	if err != nil {
		// the embedded style is covered by tests
		panic("builtin style: " + err.Error())
	}
	return style
}
