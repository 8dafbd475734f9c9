package ownmaprenderer

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

func NewImageWithBackground(r image.Rectangle, c color.Color) *image.RGBA {
	img := image.NewRGBA(r)

	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)

	return img
}

// projector maps WGS84 coordinates to pixels of an image, through the web mercator projection.
type projector struct {
	min, max orb.Point // mercator meters
	size     image.Rectangle
}

func newProjector(bound orb.Bound, size image.Rectangle) (*projector, errorsx.Error) {
	if size.Empty() {
		return nil, errorsx.Errorf("image size %v is empty", size)
	}

	mercatorBound := project.Bound(bound, project.WGS84.ToMercator)
	if mercatorBound.Max[0] <= mercatorBound.Min[0] || mercatorBound.Max[1] <= mercatorBound.Min[1] {
		return nil, errorsx.Errorf("bound %v has no area", bound)
	}

	return &projector{mercatorBound.Min, mercatorBound.Max, size}, nil
}

func (p *projector) point(ll orb.Point) orb.Point {
	m := project.WGS84.ToMercator(ll)
	return orb.Point{
		float64(p.size.Min.X) + (m[0]-p.min[0])/(p.max[0]-p.min[0])*float64(p.size.Dx()),
		float64(p.size.Min.Y) + (p.max[1]-m[1])/(p.max[1]-p.min[1])*float64(p.size.Dy()),
	}
}

// geometry returns a projected copy; the input is left untouched.
func (p *projector) geometry(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return project.Geometry(orb.Clone(g), p.point)
}
