package webservices

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmap/maprenderer"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
)

const (
	tileSizePixels = 256
	// features are fetched for a slightly larger area than the tile,
	// so that labels and markers of things just outside the tile are still drawn where they overlap it.
	tileFetchBuffer = 0.25
)

type TileService struct {
	logger       *logpkg.Logger
	featureStore *ownmapdal.FeatureStore
	sema         *semaphore.Semaphore
	rasterer     maprenderer.MapRenderer
	styleSet     *styling.StyleSet
	metrics      *Metrics
	chi.Router
}

func NewTileService(logger *logpkg.Logger, featureStore *ownmapdal.FeatureStore, rasterer maprenderer.MapRenderer, styleSet *styling.StyleSet, metrics *Metrics, maxConcurrentRenders uint) *TileService {
	ts := &TileService{logger, featureStore, semaphore.NewSemaphore(maxConcurrentRenders), rasterer, styleSet, metrics, chi.NewRouter()}

	ts.Get("/raster/{styleID}/{z}/{x}/{y}.png", ts.handleGetTile)

	return ts
}

func (ts *TileService) handleGetTile(w http.ResponseWriter, r *http.Request) {
	style, err := ts.styleSet.GetStyleByID(chi.URLParam(r, "styleID"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusNotFound)
		return
	}

	tile, err := parseTile(chi.URLParam(r, "z"), chi.URLParam(r, "x"), chi.URLParam(r, "y"))
	if err != nil {
		errorsx.HTTPError(w, ts.logger, err, http.StatusBadRequest)
		return
	}

	size := image.Rect(0, 0, tileSizePixels, tileSizePixels)
	bound := tile.Bound()
	ts.logger.Debug("serving tile %d/%d/%d. Bounds (SW, NE): [%f %f, %f %f]", tile.Z, tile.X, tile.Y, bound.Min.Lat(), bound.Min.Lon(), bound.Max.Lat(), bound.Max.Lon())

	ts.sema.Add()
	defer ts.sema.Done()

	startTime := time.Now()

	var img image.Image
	features, err := ts.featureStore.GetInBounds(tile.Bound(tileFetchBuffer))
	switch {
	case err == nil:
		img, err = ts.rasterer.RenderRaster(r.Context(), features, bound, ownmap.ZoomLevel(tile.Z), size, style)
	case errorsx.Cause(err) == ownmapdal.ErrNoDataAvailable:
		img, err = ts.rasterer.RenderTextTile(size, "(no data found)")
	}
	if err != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(err, "tile", tile), http.StatusInternalServerError)
		return
	}

	ts.metrics.tileRenderDuration.Observe(time.Since(startTime).Seconds())

	buf := new(bytes.Buffer)
	encodeErr := png.Encode(buf, img)
	if encodeErr != nil {
		errorsx.HTTPError(w, ts.logger, errorsx.Wrap(encodeErr), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}
