package main

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/orb"
	"github.com/pkg/profile"
	"github.com/simon04/OpenCartonaut/fonts"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/ownmaprenderer"
	"github.com/simon04/OpenCartonaut/styling"
	"gopkg.in/alecthomas/kingpin.v2"
)

func readStyle(fs gofs.Fs, filePath string) (*styling.MapCSSStyle, errorsx.Error) {
	style, err := styling.LoadStyleFile(fs, filePath)
	if err != nil {
		if syntaxErr, ok := errorsx.Cause(err).(*mapcss.SyntaxError); ok {
			// the position is what the user needs to see
			return nil, errorsx.Errorf("%s: line %d, column %d: %s", filePath, syntaxErr.Line, syntaxErr.Column, syntaxErr.Message)
		}
		return nil, err
	}
	return style, nil
}

func setupParse() {
	cmd := kingpin.Command("parse", "parse a MapCSS file and print it in canonical form")
	filePath := cmd.Arg("file", "path to the .mapcss file").Required().String()
	cmd.Action(func(*kingpin.ParseContext) error {
		return runCommand(func() errorsx.Error {
			style, err := readStyle(gofs.NewOsFs(), *filePath)
			if err != nil {
				return err
			}

			_, writeErr := io.WriteString(os.Stdout, mapcss.Format(style.Rules()))
			return errorsx.Wrap(writeErr)
		})
	})
}

type styledFeatureLine struct {
	ID           string               `json:"id"`
	Subpart      string               `json:"subpart"`
	Declarations *mapcss.Declarations `json:"declarations"`
}

func setupStyle() {
	cmd := kingpin.Command("style", "print the declarations a MapCSS file gives every feature of a GeoJSON file, one JSON object per line")
	stylePath := cmd.Arg("style", "path to the .mapcss file").Required().String()
	featuresPath := cmd.Arg("features", "path to the .geojson file").Required().String()
	zoom := cmd.Flag("zoom", "zoom level to evaluate at. Zoom selectors are ignored when not set").String()
	subpart := cmd.Flag("subpart", "subpart the features belong to").String()
	cmd.Action(func(*kingpin.ParseContext) error {
		return runCommand(func() errorsx.Error {
			return styleFeatures(gofs.NewOsFs(), os.Stdout, *stylePath, *featuresPath, *subpart, *zoom)
		})
	})
}

func styleFeatures(fs gofs.Fs, w io.Writer, stylePath, featuresPath, subpart, zoom string) errorsx.Error {
	style, err := readStyle(fs, stylePath)
	if err != nil {
		return err
	}

	data, readErr := fs.ReadFile(featuresPath)
	if readErr != nil {
		return errorsx.Wrap(readErr, "featuresPath", featuresPath)
	}

	features, err := ownmapdal.ReadGeoJSON(data, subpart)
	if err != nil {
		return errorsx.Wrap(err, "featuresPath", featuresPath)
	}

	zoomLevel := -1.0
	if zoom != "" {
		zoomLevel, readErr = strconv.ParseFloat(zoom, 64)
		if readErr != nil || zoomLevel < float64(ownmap.MinZoomLevel) || zoomLevel > float64(ownmap.MaxZoomLevel) {
			return errorsx.Errorf("invalid zoom %q, expected a number from %v to %v", zoom, ownmap.MinZoomLevel, ownmap.MaxZoomLevel)
		}
	}

	encoder := json.NewEncoder(w)
	for _, feature := range features {
		var decls *mapcss.Declarations
		if zoomLevel < 0 {
			decls = mapcss.EvaluateRules(style.Rules(), feature.StyleTarget())
		} else {
			decls = style.GetDeclarations(feature, ownmap.ZoomLevel(zoomLevel))
		}
		if decls == nil {
			decls = mapcss.NewDeclarations()
		}

		encodeErr := encoder.Encode(styledFeatureLine{feature.ID, feature.SubpartName, decls})
		if encodeErr != nil {
			return errorsx.Wrap(encodeErr)
		}
	}

	return nil
}

func setupRender() {
	cmd := kingpin.Command("render", "render a data file to a PNG image")
	stylePath := cmd.Arg("style", "path to the .mapcss file").Required().String()
	dataFilePath := cmd.Arg("data-file", "data file (.osm, .osm.pbf, .geojson)").Required().String()
	bbox := cmd.Flag("bbox", "area to render, 'minLon,minLat,maxLon,maxLat'. Defaults to the bounds of the data").String()
	size := cmd.Flag("size", "image size, 'WIDTHxHEIGHT'").Default("1024x768").String()
	outPath := cmd.Flag("out", "path of the PNG to write").Short('o').Required().String()
	zoom := cmd.Flag("zoom", "zoom level the style is evaluated at. Derived from the bbox when not set").String()
	shouldProfile := cmd.Flag("profile", "write a CPU profile into the current directory").Bool()
	cmd.Action(func(*kingpin.ParseContext) error {
		return runCommand(func() errorsx.Error {
			if *shouldProfile {
				defer profile.Start(profile.ProfilePath("."), profile.CPUProfile).Stop()
			}

			return renderFile(context.Background(), gofs.NewOsFs(), renderOptions{
				stylePath:    *stylePath,
				dataFilePath: *dataFilePath,
				bbox:         *bbox,
				size:         *size,
				outPath:      *outPath,
				zoom:         *zoom,
			})
		})
	})
}

type renderOptions struct {
	stylePath, dataFilePath, bbox, size, outPath, zoom string
}

func renderFile(ctx context.Context, fs gofs.Fs, options renderOptions) errorsx.Error {
	startTime := time.Now()

	style, err := readStyle(fs, options.stylePath)
	if err != nil {
		return err
	}

	imageSize, err := parseImageSize(options.size)
	if err != nil {
		return err
	}

	collection, err := ownmapdal.ReadDataFile(ctx, fs, options.dataFilePath)
	if err != nil {
		return err
	}

	bound := collection.Bound()
	if options.bbox != "" {
		bound, err = ownmap.ParseBBox(options.bbox)
		if err != nil {
			return err
		}
	}

	zoomLevel := zoomForBound(bound, imageSize.Dx())
	if options.zoom != "" {
		zoomValue, parseErr := strconv.ParseFloat(options.zoom, 64)
		if parseErr != nil {
			return errorsx.Wrap(parseErr, "zoom", options.zoom)
		}
		zoomLevel = ownmap.ZoomLevel(zoomValue)
	}

	renderer := ownmaprenderer.NewRasterRenderer(fonts.DefaultFont(), fonts.BoldFont())
	img, err := renderer.RenderRaster(ctx, collection.InBounds(bound), bound, zoomLevel, imageSize, style)
	if err != nil {
		return err
	}

	file, createErr := fs.Create(options.outPath)
	if createErr != nil {
		return errorsx.Wrap(createErr, "outPath", options.outPath)
	}
	defer file.Close()

	encodeErr := png.Encode(file, img)
	if encodeErr != nil {
		return errorsx.Wrap(encodeErr)
	}

	logger.Info("rendered %d features at zoom %.1f to %q in %s", len(collection.Features), float64(zoomLevel), options.outPath, time.Since(startTime))
	return nil
}

func parseImageSize(s string) (image.Rectangle, errorsx.Error) {
	fragments := strings.Split(strings.ToLower(s), "x")
	if len(fragments) != 2 {
		return image.Rectangle{}, errorsx.Errorf("expected size as WIDTHxHEIGHT, got %q", s)
	}

	width, err := strconv.Atoi(fragments[0])
	if err != nil {
		return image.Rectangle{}, errorsx.Wrap(err, "size", s)
	}
	height, err := strconv.Atoi(fragments[1])
	if err != nil {
		return image.Rectangle{}, errorsx.Wrap(err, "size", s)
	}

	if width <= 0 || height <= 0 {
		return image.Rectangle{}, errorsx.Errorf("image size must be positive, got %q", s)
	}

	return image.Rect(0, 0, width, height), nil
}

// zoomForBound is the web mercator zoom level that shows bound across widthPx pixels.
func zoomForBound(bound orb.Bound, widthPx int) ownmap.ZoomLevel {
	lonSpan := bound.Max.Lon() - bound.Min.Lon()
	if lonSpan <= 0 {
		return ownmap.MaxZoomLevel
	}

	zoom := math.Log2(360 * float64(widthPx) / (256 * lonSpan))
	zoom = math.Max(float64(ownmap.MinZoomLevel), math.Min(float64(ownmap.MaxZoomLevel), zoom))

	return ownmap.ZoomLevel(math.Round(zoom*10) / 10)
}
