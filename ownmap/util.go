package ownmap

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb"
)

// Overlaps checks whether an item is at least partially inside a container
func Overlaps(container orb.Bound, item orb.Bound) bool {
	if container.Min.Lat() > item.Max.Lat() {
		// container is wholly above item
		return false
	}

	if container.Max.Lat() < item.Min.Lat() {
		// container is wholly below item
		return false
	}

	if container.Min.Lon() > item.Max.Lon() {
		// container is wholly to the right of item
		return false
	}

	if container.Max.Lon() < item.Min.Lon() {
		// container is wholly to the left of item
		return false
	}

	return true
}

func IsTotallyInside(container orb.Bound, item orb.Bound) bool {
	return item.Max.Lat() <= container.Max.Lat() &&
		item.Max.Lon() <= container.Max.Lon() &&
		item.Min.Lat() >= container.Min.Lat() &&
		item.Min.Lon() >= container.Min.Lon()
}

func GetWholeWorldBounds() orb.Bound {
	return orb.Bound{
		Min: orb.Point{-180, -90},
		Max: orb.Point{180, 90},
	}
}

// IsInBounds tests if a point is strictly inside a container
func IsInBounds(bounds orb.Bound, point orb.Point) bool {
	isInLatBounds := point.Lat() < bounds.Max.Lat() && point.Lat() > bounds.Min.Lat()
	if !isInLatBounds {
		return false
	}

	isInLonBounds := point.Lon() < bounds.Max.Lon() && point.Lon() > bounds.Min.Lon()
	if !isInLonBounds {
		return false
	}

	return true
}

// ParseBBox parses "minx,miny,maxx,maxy" (lon/lat order).
func ParseBBox(s string) (orb.Bound, errorsx.Error) {
	fragments := strings.Split(s, ",")
	if len(fragments) != 4 {
		return orb.Bound{}, errorsx.Errorf("expected 4 comma separated numbers in bbox, got %q", s)
	}

	var values [4]float64
	for i, fragment := range fragments {
		value, err := strconv.ParseFloat(strings.TrimSpace(fragment), 64)
		if err != nil {
			return orb.Bound{}, errorsx.Wrap(err, "bbox", s)
		}
		values[i] = value
	}

	bound := orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}
	if bound.Min.Lon() > bound.Max.Lon() || bound.Min.Lat() > bound.Max.Lat() {
		return orb.Bound{}, errorsx.Errorf("bbox minimum is greater than its maximum: %q", s)
	}
	return bound, nil
}

// FormatOverpassBBox formats a bound the way Overpass expects it: "south,west,north,east".
func FormatOverpassBBox(bound orb.Bound) string {
	return strings.Join([]string{
		strconv.FormatFloat(bound.Min.Lat(), 'f', -1, 64),
		strconv.FormatFloat(bound.Min.Lon(), 'f', -1, 64),
		strconv.FormatFloat(bound.Max.Lat(), 'f', -1, 64),
		strconv.FormatFloat(bound.Max.Lon(), 'f', -1, 64),
	}, ",")
}
