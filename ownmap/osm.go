package ownmap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// OSMFeatureBuilder turns a stream of OSM objects into features. Nodes must be
// added before the ways referencing them, as in OSM XML and PBF files.
type OSMFeatureBuilder struct {
	subpart     string
	locations   map[osm.NodeID]orb.Point
	features    []*Feature
	skippedWays int
}

func NewOSMFeatureBuilder(subpart string) *OSMFeatureBuilder {
	return &OSMFeatureBuilder{
		subpart:   subpart,
		locations: make(map[osm.NodeID]orb.Point),
	}
}

func (b *OSMFeatureBuilder) AddObject(object osm.Object) {
	switch obj := object.(type) {
	case *osm.Node:
		b.AddNode(obj)
	case *osm.Way:
		b.AddWay(obj)
	}
	// relations are not turned into features
}

// AddNode records the node location. Tagged nodes become point features.
func (b *OSMFeatureBuilder) AddNode(node *osm.Node) {
	point := orb.Point{node.Lon, node.Lat}
	b.locations[node.ID] = point

	if len(node.Tags) == 0 {
		return
	}

	b.features = append(b.features, NewFeature(
		ObjectID(ObjectTypeNode, int64(node.ID)),
		ObjectTypeNode,
		point,
		TagMapFromOSMTags(node.Tags),
		b.subpart,
	))
}

// AddWay adds a line feature, or an area feature when the way is closed.
// Ways with unresolvable node locations are skipped.
func (b *OSMFeatureBuilder) AddWay(way *osm.Way) {
	if len(way.Nodes) < 2 {
		b.skippedWays++
		return
	}

	points := make(orb.LineString, 0, len(way.Nodes))
	for _, wayNode := range way.Nodes {
		if wayNode.Lat != 0 || wayNode.Lon != 0 {
			points = append(points, orb.Point{wayNode.Lon, wayNode.Lat})
			continue
		}
		point, ok := b.locations[wayNode.ID]
		if !ok {
			b.skippedWays++
			return
		}
		points = append(points, point)
	}

	var geometry orb.Geometry = points
	isClosed := way.Nodes[0].ID == way.Nodes[len(way.Nodes)-1].ID
	if isClosed && len(points) >= 4 {
		geometry = orb.Polygon{orb.Ring(points)}
	}

	b.features = append(b.features, NewFeature(
		ObjectID(ObjectTypeWay, int64(way.ID)),
		ObjectTypeWay,
		geometry,
		TagMapFromOSMTags(way.Tags),
		b.subpart,
	))
}

func (b *OSMFeatureBuilder) Features() []*Feature {
	return b.features
}

func (b *OSMFeatureBuilder) SkippedWays() int {
	return b.skippedWays
}

func TagMapFromOSMTags(osmTags osm.Tags) TagMap {
	m := make(TagMap, len(osmTags))
	for _, tag := range osmTags {
		m[tag.Key] = tag.Value
	}
	return m
}
