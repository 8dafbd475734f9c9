package ownmaprenderer

import (
	"context"
	"image"
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/llgcode/draw2d"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/llgcode/draw2d/draw2dkit"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/styling"
	"golang.org/x/image/font"
)

// clipMargin is how far (in pixels) geometries may extend past the image before being clipped,
// so that wide strokes and markers near the edge are still drawn whole.
const clipMargin = 64

type RasterRenderer struct {
	font     *truetype.Font
	boldFont *truetype.Font
}

func NewRasterRenderer(font, boldFont *truetype.Font) *RasterRenderer {
	if boldFont == nil {
		boldFont = font
	}
	return &RasterRenderer{
		font,
		boldFont,
	}
}

func (rr *RasterRenderer) RenderTextTile(size image.Rectangle, text string) (image.Image, errorsx.Error) {
	img := image.NewRGBA(size)
	x := size.Max.X / 2
	y := size.Max.Y / 2

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(rr.font)
	ctx.SetFontSize(16.0)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))

	_, err := ctx.DrawString(text, freetype.Pt(x, y))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return img, nil
}

type styledFeature struct {
	Feature *ownmap.Feature
	Style   *styling.FeatureStyle
	// Geometry in pixel coordinates, clipped to the image (plus margin)
	Geometry orb.Geometry
}

// RenderRaster draws the features onto an image of the given size showing bound.
// Features are painted in ascending z-index order (stable for equal z-indexes), labels last.
func (rr *RasterRenderer) RenderRaster(
	ctx context.Context,
	features []*ownmap.Feature,
	bound orb.Bound,
	zoomLevel ownmap.ZoomLevel,
	size image.Rectangle,
	style styling.Style,
) (*image.RGBA, errorsx.Error) {
	proj, err := newProjector(bound, size)
	if err != nil {
		return nil, err
	}

	endStyleSpan := ownmap.StartSpan(ctx, "evaluate styles")
	clipBound := orb.Bound{
		Min: orb.Point{float64(size.Min.X - clipMargin), float64(size.Min.Y - clipMargin)},
		Max: orb.Point{float64(size.Max.X + clipMargin), float64(size.Max.Y + clipMargin)},
	}

	var items []styledFeature
	for _, feature := range features {
		if ctx.Err() != nil {
			endStyleSpan()
			return nil, errorsx.Wrap(ctx.Err())
		}

		featureStyle := style.GetFeatureStyle(feature, zoomLevel)
		if featureStyle == nil {
			// this feature shouldn't be shown
			continue
		}

		geometry := clip.Geometry(clipBound, proj.geometry(feature.Geometry))
		if geometry == nil {
			continue
		}

		items = append(items, styledFeature{feature, featureStyle, geometry})
	}
	endStyleSpan()

	// lowest z-index at the bottom (first to be drawn), highest at the top (last to be drawn)
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Style.GetZIndex() < items[b].Style.GetZIndex()
	})

	endDrawSpan := ownmap.StartSpan(ctx, "draw map")
	defer endDrawSpan()

	img := NewImageWithBackground(size, style.GetBackground())
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillRule(draw2d.FillRuleEvenOdd)
	gc.SetLineCap(draw2d.RoundCap)
	gc.SetLineJoin(draw2d.RoundJoin)

	for _, item := range items {
		if ctx.Err() != nil {
			return nil, errorsx.Wrap(ctx.Err())
		}
		drawGeometry(gc, item.Geometry, item.Style)
	}

	for _, item := range items {
		if item.Style.Label == nil {
			continue
		}
		anchor, ok := labelAnchor(item.Geometry)
		if !ok {
			continue
		}
		err := rr.drawLabel(img, anchor, item.Style.Label)
		if err != nil {
			return nil, errorsx.Wrap(err, "featureID", item.Feature.ID)
		}
	}

	return img, nil
}

func drawGeometry(gc *draw2dimg.GraphicContext, geometry orb.Geometry, style *styling.FeatureStyle) {
	switch g := geometry.(type) {
	case orb.Point:
		drawMarker(gc, g, style.Marker)
	case orb.MultiPoint:
		for _, p := range g {
			drawMarker(gc, p, style.Marker)
		}
	case orb.LineString:
		drawLines(gc, orb.MultiLineString{g}, style.Stroke)
	case orb.MultiLineString:
		drawLines(gc, g, style.Stroke)
	case orb.Ring:
		drawArea(gc, orb.Polygon{g}, style)
	case orb.Polygon:
		drawArea(gc, g, style)
	case orb.MultiPolygon:
		for _, polygon := range g {
			drawArea(gc, polygon, style)
		}
	case orb.Bound:
		drawArea(gc, g.ToPolygon(), style)
	case orb.Collection:
		for _, child := range g {
			drawGeometry(gc, child, style)
		}
	}
}

func drawLines(gc *draw2dimg.GraphicContext, lines orb.MultiLineString, stroke *styling.Stroke) {
	if !applyStroke(gc, stroke) {
		return
	}

	gc.BeginPath()
	for _, line := range lines {
		for i, point := range line {
			if i == 0 {
				gc.MoveTo(point[0], point[1])
			} else {
				gc.LineTo(point[0], point[1])
			}
		}
	}
	gc.Stroke()
}

// drawArea fills the polygon (inner rings are holes) and strokes its outline.
func drawArea(gc *draw2dimg.GraphicContext, polygon orb.Polygon, style *styling.FeatureStyle) {
	fill := applyFill(gc, style.Fill)
	stroke := applyStroke(gc, style.Stroke)
	if !fill && !stroke {
		return
	}

	gc.BeginPath()
	for _, ring := range polygon {
		for i, point := range ring {
			if i == 0 {
				gc.MoveTo(point[0], point[1])
			} else {
				gc.LineTo(point[0], point[1])
			}
		}
		gc.Close()
	}

	switch {
	case fill && stroke:
		gc.FillStroke()
	case fill:
		gc.Fill()
	default:
		gc.Stroke()
	}
}

func drawMarker(gc *draw2dimg.GraphicContext, point orb.Point, marker *styling.Marker) {
	if marker == nil || marker.Radius <= 0 {
		return
	}

	fill := applyFill(gc, marker.Fill)
	stroke := applyStroke(gc, marker.Stroke)
	if !fill && !stroke {
		return
	}

	gc.BeginPath()
	draw2dkit.Circle(gc, point[0], point[1], marker.Radius)

	switch {
	case fill && stroke:
		gc.FillStroke()
	case fill:
		gc.Fill()
	default:
		gc.Stroke()
	}
}

func applyFill(gc *draw2dimg.GraphicContext, fill *styling.Fill) bool {
	if fill == nil || fill.Color == nil {
		return false
	}
	gc.SetFillColor(fill.Color)
	return true
}

func applyStroke(gc *draw2dimg.GraphicContext, stroke *styling.Stroke) bool {
	if stroke == nil || stroke.Color == nil || stroke.Width <= 0 {
		return false
	}
	gc.SetStrokeColor(stroke.Color)
	gc.SetLineWidth(stroke.Width)
	gc.SetLineDash(stroke.Dashes, stroke.DashesOffset)
	return true
}

// labelAnchor returns the pixel position a label is placed at: the point itself,
// the middle of a line or the centroid of an area.
func labelAnchor(geometry orb.Geometry) (orb.Point, bool) {
	switch g := geometry.(type) {
	case orb.Point:
		return g, true
	case orb.LineString:
		return pointAlongLine(g, planar.Length(g)/2), len(g) > 0
	case orb.MultiLineString:
		longest := orb.LineString{}
		for _, line := range g {
			if planar.Length(line) >= planar.Length(longest) {
				longest = line
			}
		}
		return pointAlongLine(longest, planar.Length(longest)/2), len(longest) > 0
	case nil:
		return orb.Point{}, false
	}

	if geometry.Dimensions() == 0 {
		// multi points and collections of them
		return geometry.Bound().Center(), true
	}

	centroid, area := planar.CentroidArea(geometry)
	if area == 0 && geometry.Dimensions() == 2 {
		return geometry.Bound().Center(), true
	}
	return centroid, true
}

func pointAlongLine(line orb.LineString, distance float64) orb.Point {
	if len(line) == 0 {
		return orb.Point{}
	}

	for i := 1; i < len(line); i++ {
		segmentLength := planar.Distance(line[i-1], line[i])
		if distance <= segmentLength && segmentLength > 0 {
			ratio := distance / segmentLength
			return orb.Point{
				line[i-1][0] + (line[i][0]-line[i-1][0])*ratio,
				line[i-1][1] + (line[i][1]-line[i-1][1])*ratio,
			}
		}
		distance -= segmentLength
	}

	return line[len(line)-1]
}

func (rr *RasterRenderer) fontFor(label *styling.Label) *truetype.Font {
	if strings.Contains(strings.ToLower(label.Font), "bold") {
		return rr.boldFont
	}
	return rr.font
}

// drawLabel draws the label text with its anchor and offsets applied. A halo is drawn
// by painting the text in the halo color at every offset within the halo radius first.
func (rr *RasterRenderer) drawLabel(img *image.RGBA, anchor orb.Point, label *styling.Label) errorsx.Error {
	if label.Text == "" || label.FontSize <= 0 {
		return nil
	}

	labelFont := rr.fontFor(label)
	face := truetype.NewFace(labelFont, &truetype.Options{Size: label.FontSize, DPI: 72})
	defer face.Close()

	width := float64(font.MeasureString(face, label.Text)) / 64
	metrics := face.Metrics()
	ascent := float64(metrics.Ascent) / 64
	descent := float64(metrics.Descent) / 64

	x := anchor[0] + label.OffsetX
	switch label.HorizontalAnchor {
	case "left", "start":
	case "right", "end":
		x -= width
	default:
		x -= width / 2
	}

	y := anchor[1] + label.OffsetY
	switch label.VerticalAnchor {
	case "top", "hanging":
		y += ascent
	case "bottom", "ideographic":
		y -= descent
	case "alphabetic":
	default:
		y += (ascent - descent) / 2
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(labelFont)
	ctx.SetFontSize(label.FontSize)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)

	if label.Halo != nil && label.Halo.Color != nil && label.Halo.Width > 0 {
		ctx.SetSrc(image.NewUniform(label.Halo.Color))
		radius := int(math.Ceil(label.Halo.Width / 2))
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy > radius*radius || (dx == 0 && dy == 0) {
					continue
				}
				_, err := ctx.DrawString(label.Text, freetype.Pt(int(math.Round(x))+dx, int(math.Round(y))+dy))
				if err != nil {
					return errorsx.Wrap(err)
				}
			}
		}
	}

	if label.Fill == nil || label.Fill.Color == nil {
		return nil
	}

	ctx.SetSrc(image.NewUniform(label.Fill.Color))
	_, err := ctx.DrawString(label.Text, freetype.Pt(int(math.Round(x)), int(math.Round(y))))
	if err != nil {
		return errorsx.Wrap(err)
	}

	return nil
}
