package ownmapdal

import (
	"sort"
	"sync"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/maruel/natural"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
)

// FeatureStore holds named feature collections, from data files and from executed queries.
type FeatureStore struct {
	collections map[string]*ownmap.FeatureCollection
	mu          *sync.RWMutex
}

func NewFeatureStore() *FeatureStore {
	return &FeatureStore{make(map[string]*ownmap.FeatureCollection), new(sync.RWMutex)}
}

// Put adds a collection, replacing any collection with the same name.
func (s *FeatureStore) Put(collection *ownmap.FeatureCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.Name] = collection
}

func (s *FeatureStore) Get(name string) (*ownmap.FeatureCollection, errorsx.Error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	collection, ok := s.collections[name]
	if !ok {
		return nil, errorsx.Wrap(ErrNoDataAvailable, "name", name)
	}
	return collection, nil
}

func (s *FeatureStore) Delete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
}

// List returns the collections in natural name order.
func (s *FeatureStore) List() []*ownmap.FeatureCollection {
	s.mu.RLock()
	collections := make([]*ownmap.FeatureCollection, 0, len(s.collections))
	for _, collection := range s.collections {
		collections = append(collections, collection)
	}
	s.mu.RUnlock()

	sort.Slice(collections, func(i, j int) bool {
		return natural.Less(collections[i].Name, collections[j].Name)
	})
	return collections
}

type MatchLevel int

const (
	MatchLevelNone MatchLevel = iota
	MatchLevelPartial
	MatchLevelFull
)

func (l MatchLevel) String() string {
	switch l {
	case MatchLevelPartial:
		return "partial"
	case MatchLevelFull:
		return "full"
	default:
		return "none"
	}
}

type ChosenCollectionForBounds struct {
	MatchLevel MatchLevel
	*ownmap.FeatureCollection
}

func getMatchLevel(collection *ownmap.FeatureCollection, bounds orb.Bound) MatchLevel {
	if len(collection.Features) == 0 {
		return MatchLevelNone
	}

	collectionBounds := collection.Bound()

	atLeastPartialMatch := ownmap.Overlaps(collectionBounds, bounds)
	if !atLeastPartialMatch {
		return MatchLevelNone
	}

	isFullMatch := ownmap.IsTotallyInside(collectionBounds, bounds)
	if isFullMatch {
		return MatchLevelFull
	}

	return MatchLevelPartial
}

// GetCollectionsForBounds selects the collections providing data for the given bounds.
func (s *FeatureStore) GetCollectionsForBounds(bounds orb.Bound) []*ChosenCollectionForBounds {
	var chosen []*ChosenCollectionForBounds
	for _, collection := range s.List() {
		matchLevel := getMatchLevel(collection, bounds)
		if matchLevel == MatchLevelNone {
			continue
		}

		chosen = append(chosen, &ChosenCollectionForBounds{
			MatchLevel:        matchLevel,
			FeatureCollection: collection,
		})
	}

	return chosen
}

// GetInBounds returns the features of every collection overlapping the bounds.
// It returns ErrNoDataAvailable when no collection covers the bounds.
func (s *FeatureStore) GetInBounds(bounds orb.Bound) ([]*ownmap.Feature, errorsx.Error) {
	chosen := s.GetCollectionsForBounds(bounds)
	if len(chosen) == 0 {
		return nil, errorsx.Wrap(ErrNoDataAvailable)
	}

	var features []*ownmap.Feature
	for _, collection := range chosen {
		features = append(features, collection.InBounds(bounds)...)
	}
	return features, nil
}

// DatasetInfos describes every collection, in natural name order.
func (s *FeatureStore) DatasetInfos() []*ownmap.DatasetInfo {
	var infos []*ownmap.DatasetInfo
	for _, collection := range s.List() {
		infos = append(infos, collection.Info())
	}
	return infos
}
