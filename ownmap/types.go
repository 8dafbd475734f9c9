package ownmap

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/mapcss"
)

type ObjectType int

const (
	ObjectTypeUnknown  ObjectType = 0
	ObjectTypeNode     ObjectType = 1
	ObjectTypeWay      ObjectType = 2
	ObjectTypeRelation ObjectType = 3
)

func (t ObjectType) String() string {
	switch t {
	case ObjectTypeNode:
		return "node"
	case ObjectTypeWay:
		return "way"
	case ObjectTypeRelation:
		return "relation"
	default:
		return "unknown"
	}
}

type ZoomLevel float64

const (
	MinZoomLevel ZoomLevel = 0
	MaxZoomLevel ZoomLevel = 22
)

type TagMap map[string]string

// Feature is a map object ready to be styled: a geometry, its tags and the subpart
// of the query it came from. It implements mapcss.Target.
type Feature struct {
	ID          string
	ObjectType  ObjectType
	Geometry    orb.Geometry
	Tags        TagMap
	SubpartName string

	mu      sync.Mutex
	classes map[string]bool
}

var _ mapcss.Target = &Feature{}

func NewFeature(id string, objectType ObjectType, geometry orb.Geometry, tags TagMap, subpart string) *Feature {
	if tags == nil {
		tags = TagMap{}
	}
	return &Feature{
		ID:          id,
		ObjectType:  objectType,
		Geometry:    geometry,
		Tags:        tags,
		SubpartName: subpart,
	}
}

func ObjectID(objectType ObjectType, id int64) string {
	return fmt.Sprintf("%s/%d", objectType, id)
}

func (f *Feature) GeometryKind() mapcss.GeometryKind {
	switch f.Geometry.(type) {
	case orb.Point, orb.MultiPoint:
		return mapcss.GeometryPoint
	case orb.LineString, orb.MultiLineString:
		return mapcss.GeometryLine
	case orb.Polygon, orb.MultiPolygon, orb.Ring, orb.Bound:
		return mapcss.GeometryArea
	default:
		return mapcss.GeometryUnknown
	}
}

func (f *Feature) Tag(key string) (string, bool) {
	value, ok := f.Tags[key]
	return value, ok
}

func (f *Feature) TagKeys() []string {
	keys := make([]string, 0, len(f.Tags))
	for key := range f.Tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (f *Feature) Subpart() string {
	return f.SubpartName
}

func (f *Feature) HasClass(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classes[name]
}

func (f *Feature) SetClass(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.classes == nil {
		f.classes = make(map[string]bool)
	}
	f.classes[name] = true
}

// Classes returns the class flags set on the feature, sorted.
func (f *Feature) Classes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var classes []string
	for class := range f.classes {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes
}

func (f *Feature) Extent() (mapcss.Extent, bool) {
	if f.Geometry == nil {
		return mapcss.Extent{}, false
	}
	bound := f.Geometry.Bound()
	return mapcss.Extent{
		MinX: bound.Min.X(),
		MinY: bound.Min.Y(),
		MaxX: bound.Max.X(),
		MaxY: bound.Max.Y(),
	}, true
}

// StyleTarget returns a view of the feature with its own, empty class flags.
// Features shared between concurrent renders are evaluated through it.
func (f *Feature) StyleTarget() mapcss.Target {
	return &styleTarget{Feature: f, classes: make(map[string]bool)}
}

type styleTarget struct {
	*Feature
	classes map[string]bool
}

func (t *styleTarget) HasClass(name string) bool {
	return t.classes[name]
}

func (t *styleTarget) SetClass(name string) {
	t.classes[name] = true
}

type FeatureCollection struct {
	Name      string
	Features  []*Feature
	UpdatedAt time.Time
}

func NewFeatureCollection(name string, features []*Feature) *FeatureCollection {
	return &FeatureCollection{
		Name:      name,
		Features:  features,
		UpdatedAt: time.Now(),
	}
}

// Bound returns the bound of all features, or an empty bound if there are none.
func (fc *FeatureCollection) Bound() orb.Bound {
	var bound orb.Bound
	first := true
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		if first {
			bound = feature.Geometry.Bound()
			first = false
			continue
		}
		bound = bound.Union(feature.Geometry.Bound())
	}
	return bound
}

// InBounds returns the features whose bound overlaps the given bound.
func (fc *FeatureCollection) InBounds(bound orb.Bound) []*Feature {
	var features []*Feature
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		if Overlaps(bound, feature.Geometry.Bound()) {
			features = append(features, feature)
		}
	}
	return features
}

type DatasetInfo struct {
	Name         string    `json:"name"`
	Bounds       orb.Bound `json:"bounds"`
	FeatureCount int       `json:"featureCount"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (fc *FeatureCollection) Info() *DatasetInfo {
	return &DatasetInfo{
		Name:         fc.Name,
		Bounds:       fc.Bound(),
		FeatureCount: len(fc.Features),
		UpdatedAt:    fc.UpdatedAt,
	}
}
