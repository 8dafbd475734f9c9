package webservices

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/simon04/OpenCartonaut/ownmap"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
)

func NewInfoService(logger *logpkg.Logger, featureStore *ownmapdal.FeatureStore, styleSet *styling.StyleSet, overpassURL string) *InfoService {
	ws := &InfoService{logger, featureStore, styleSet, overpassURL, chi.NewRouter()}
	ws.Get("/", ws.handleGet)

	return ws
}

type InfoService struct {
	logger       *logpkg.Logger
	featureStore *ownmapdal.FeatureStore
	styleSet     *styling.StyleSet
	overpassURL  string
	chi.Router
}

type infoType struct {
	Style        stylesType            `json:"style"`
	Datasets     []*ownmap.DatasetInfo `json:"datasets"`
	OverpassURL  string                `json:"overpassUrl"`
	DefaultQuery string                `json:"defaultQuery"`
}

func (ws *InfoService) handleGet(w http.ResponseWriter, r *http.Request) {
	infos := ws.featureStore.DatasetInfos()
	if infos == nil {
		infos = []*ownmap.DatasetInfo{}
	}

	style := stylesType{
		ws.styleSet.GetDefaultStyle().GetStyleID(),
		ws.styleSet.GetAllStyleIDs(),
	}

	render.JSON(w, r, infoType{style, infos, ws.overpassURL, ownmapdal.DefaultQuery})
}
