package styling

import (
	"errors"
	"image/color"
	"sort"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/maruel/natural"
	"github.com/simon04/OpenCartonaut/mapcss"
	"github.com/simon04/OpenCartonaut/ownmap"
)

var ErrStyleNotFound = errors.New("style not found")

type ItemStyle interface {
	GetZIndex() float64
}

type Style interface {
	GetStyleID() string
	// GetDeclarations returns the merged declarations for the feature. It never mutates the feature.
	GetDeclarations(feature *ownmap.Feature, zoomLevel ownmap.ZoomLevel) *mapcss.Declarations
	// GetFeatureStyle returns nil when the feature should not be drawn.
	GetFeatureStyle(feature *ownmap.Feature, zoomLevel ownmap.ZoomLevel) *FeatureStyle
	GetBackground() color.Color
}

type StyleSet struct {
	stylesMap      map[string]Style // map[Style ID]Style
	defaultStyleID string
	mu             *sync.RWMutex
}

func NewStyleSet(styles []Style, defaultStyleID string) (*StyleSet, errorsx.Error) {
	styleSet := &StyleSet{
		stylesMap:      make(map[string]Style),
		defaultStyleID: defaultStyleID,
		mu:             new(sync.RWMutex),
	}

	defaultIDFound := false

	for _, style := range styles {
		styleID := style.GetStyleID()
		_, ok := styleSet.stylesMap[styleID]
		if ok {
			return nil, errorsx.Errorf("duplicate style ID found: %q", styleID)
		}

		styleSet.stylesMap[styleID] = style

		if defaultStyleID == styleID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Errorf("default ID %q not found in any supplied styles", defaultStyleID)
	}

	return styleSet, nil
}

func (s *StyleSet) GetStyleByID(id string) (Style, errorsx.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	style, ok := s.stylesMap[id]
	if !ok {
		return nil, errorsx.Wrap(ErrStyleNotFound, "styleID", id)
	}
	return style, nil
}

func (s *StyleSet) GetDefaultStyle() Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stylesMap[s.defaultStyleID]
}

// PutStyle adds a style or replaces the style with the same ID.
func (s *StyleSet) PutStyle(style Style) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stylesMap[style.GetStyleID()] = style
}

// RemoveStyle removes a style. The default style cannot be removed.
func (s *StyleSet) RemoveStyle(id string) errorsx.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.defaultStyleID {
		return errorsx.Errorf("cannot remove the default style %q", id)
	}
	if _, ok := s.stylesMap[id]; !ok {
		return errorsx.Wrap(ErrStyleNotFound, "styleID", id)
	}
	delete(s.stylesMap, id)
	return nil
}

// GetAllStyleIDs returns the style IDs in natural order.
func (s *StyleSet) GetAllStyleIDs() []string {
	s.mu.RLock()
	styleIDs := make([]string, 0, len(s.stylesMap))
	for id := range s.stylesMap {
		styleIDs = append(styleIDs, id)
	}
	s.mu.RUnlock()

	sort.Slice(styleIDs, func(i, j int) bool {
		return natural.Less(styleIDs[i], styleIDs[j])
	})

	return styleIDs
}
