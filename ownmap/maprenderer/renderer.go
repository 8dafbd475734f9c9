package maprenderer

import (
	"context"
	"image"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/styling"
)

// MapRenderer draws styled features into an image. ownmaprenderer.RasterRenderer implements it.
type MapRenderer interface {
	RenderRaster(ctx context.Context, features []*ownmap.Feature, bound orb.Bound, zoomLevel ownmap.ZoomLevel, size image.Rectangle, style styling.Style) (*image.RGBA, errorsx.Error)
	RenderTextTile(size image.Rectangle, text string) (image.Image, errorsx.Error)
}
