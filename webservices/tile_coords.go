package webservices

import (
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/orb/maptile"
)

const maxTileZoom = 22

// parseTile reads slippy map tile coordinates. The y value may carry a file extension ("12.png").
func parseTile(zStr, xStr, yStr string) (maptile.Tile, errorsx.Error) {
	yStr = strings.TrimSuffix(yStr, ".png")

	ints, err := stringsToInts(zStr, xStr, yStr)
	if err != nil {
		return maptile.Tile{}, errorsx.Wrap(err, "z", zStr, "x", xStr, "y", yStr)
	}
	z, x, y := ints[0], ints[1], ints[2]

	if z < 0 || z > maxTileZoom {
		return maptile.Tile{}, errorsx.Errorf("zoom level %d out of range [0, %d]", z, maxTileZoom)
	}

	tilesPerAxis := 1 << uint(z)
	if x < 0 || x >= tilesPerAxis || y < 0 || y >= tilesPerAxis {
		return maptile.Tile{}, errorsx.Errorf("tile %d/%d/%d does not exist", z, x, y)
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(z)), nil
}

func stringsToInts(s ...string) ([]int, error) {
	var ints []int
	for _, str := range s {
		i, err := strconv.Atoi(str)
		if err != nil {
			return nil, err
		}
		ints = append(ints, i)
	}

	return ints, nil
}
