package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStyle = `node[place=town] { icon-width: 4; text: name; }
way[railway=rail] { color: #707070; width: 2; }
way[railway=rail]|z14- { width: 4; }
`

const testFeatures = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "node/1", "properties": {"name": "Gars am Kamp", "place": "town"}, "geometry": {"type": "Point", "coordinates": [15.6594592, 48.5951053]}},
    {"type": "Feature", "id": "way/2", "properties": {"railway": "rail"}, "geometry": {"type": "LineString", "coordinates": [[15.60, 48.55], [15.70, 48.62]]}}
  ]
}`

func init() {
	logger = logpkg.NewLogger(os.Stderr, logpkg.LogLevelError)
}

func newTestFs(t *testing.T) mockfs.MockFs {
	t.Helper()
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.WriteFile("/style.mapcss", []byte(testStyle), 0644))
	require.NoError(t, fs.WriteFile("/broken.mapcss", []byte("way {\n  width: 1"), 0644))
	require.NoError(t, fs.WriteFile("/towns.geojson", []byte(testFeatures), 0644))
	return fs
}

func Test_styleFeatures(t *testing.T) {
	fs := newTestFs(t)

	readLines := func(t *testing.T, zoom string) []map[string]interface{} {
		buf := bytes.NewBuffer(nil)
		err := styleFeatures(fs, buf, "/style.mapcss", "/towns.geojson", "", zoom)
		require.NoError(t, err)

		var lines []map[string]interface{}
		scanner := bufio.NewScanner(buf)
		for scanner.Scan() {
			var line map[string]interface{}
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
			lines = append(lines, line)
		}
		require.Len(t, lines, 2)
		return lines
	}

	t.Run("zoom ignored", func(t *testing.T) {
		lines := readLines(t, "")
		assert.Equal(t, "node/1", lines[0]["id"])
		assert.Equal(t, map[string]interface{}{"icon-width": float64(4), "text": "Gars am Kamp"}, lines[0]["declarations"])
		assert.Equal(t, float64(4), lines[1]["declarations"].(map[string]interface{})["width"])
	})

	t.Run("low zoom", func(t *testing.T) {
		lines := readLines(t, "10")
		assert.Equal(t, float64(2), lines[1]["declarations"].(map[string]interface{})["width"])
	})

	t.Run("invalid zoom", func(t *testing.T) {
		err := styleFeatures(fs, bytes.NewBuffer(nil), "/style.mapcss", "/towns.geojson", "", "30")
		assert.Error(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		err := styleFeatures(fs, bytes.NewBuffer(nil), "/broken.mapcss", "/towns.geojson", "", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func Test_renderFile(t *testing.T) {
	fs := newTestFs(t)

	err := renderFile(context.Background(), fs, renderOptions{
		stylePath:    "/style.mapcss",
		dataFilePath: "/towns.geojson",
		bbox:         "15.5,48.5,15.8,48.7",
		size:         "200x100",
		outPath:      "/out.png",
	})
	require.NoError(t, err)

	data, readErr := fs.ReadFile("/out.png")
	require.NoError(t, readErr)

	img, decodeErr := png.Decode(bytes.NewReader(data))
	require.NoError(t, decodeErr)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
}

func Test_parseImageSize(t *testing.T) {
	tests := []struct {
		in      string
		want    image.Rectangle
		wantErr bool
	}{
		{"1024x768", image.Rect(0, 0, 1024, 768), false},
		{"256X256", image.Rect(0, 0, 256, 256), false},
		{"1024", image.Rectangle{}, true},
		{"0x10", image.Rectangle{}, true},
		{"axb", image.Rectangle{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseImageSize(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_zoomForBound(t *testing.T) {
	// the whole world across one tile is zoom 0
	assert.Equal(t, ownmap.ZoomLevel(0), zoomForBound(orb.Bound{Min: orb.Point{-180, -85}, Max: orb.Point{180, 85}}, 256))
	assert.Equal(t, ownmap.ZoomLevel(1), zoomForBound(orb.Bound{Min: orb.Point{-180, -85}, Max: orb.Point{180, 85}}, 512))
	assert.Equal(t, ownmap.MaxZoomLevel, zoomForBound(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{1, 1}}, 512))
}
