package fonts

import (
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularFont *truetype.Font
	boldFont    *truetype.Font
)

func init() {
	var err errorsx.Error
	regularFont, err = parseFont(goregular.TTF)
	if err != nil {
		panic(err)
	}

	boldFont, err = parseFont(gobold.TTF)
	if err != nil {
		panic(err)
	}
}

func parseFont(ttf []byte) (*truetype.Font, errorsx.Error) {
	font, err := freetype.ParseFont(ttf)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return font, nil
}

// DefaultFont is used for every label unless the font names a bold weight.
func DefaultFont() *truetype.Font {
	return regularFont
}

func BoldFont() *truetype.Font {
	return boldFont
}
