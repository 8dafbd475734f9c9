package ownmap

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb/geojson"
)

const subpartProperty = "@subpart"

// NewFeatureFromGeoJSON converts a GeoJSON feature. Scalar properties become tags.
func NewFeatureFromGeoJSON(f *geojson.Feature, subpart string, index int) *Feature {
	id := fmt.Sprintf("feature/%d", index)
	if f.ID != nil {
		id = fmt.Sprint(f.ID)
	}

	tags := make(TagMap, len(f.Properties))
	for key, value := range f.Properties {
		if key == subpartProperty {
			if subpart == "" {
				subpart = fmt.Sprint(value)
			}
			continue
		}
		if tag, ok := propertyToTag(value); ok {
			tags[key] = tag
		}
	}

	return NewFeature(id, objectTypeFromID(id), f.Geometry, tags, subpart)
}

func propertyToTag(value interface{}) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func objectTypeFromID(id string) ObjectType {
	switch {
	case strings.HasPrefix(id, "node/"):
		return ObjectTypeNode
	case strings.HasPrefix(id, "way/"):
		return ObjectTypeWay
	case strings.HasPrefix(id, "relation/"):
		return ObjectTypeRelation
	}
	return ObjectTypeUnknown
}

// ToGeoJSON converts the feature back to GeoJSON, keeping the subpart as a property.
func (f *Feature) ToGeoJSON() *geojson.Feature {
	gf := geojson.NewFeature(f.Geometry)
	gf.ID = f.ID
	for key, value := range f.Tags {
		gf.Properties[key] = value
	}
	if f.SubpartName != "" {
		gf.Properties[subpartProperty] = f.SubpartName
	}
	return gf
}
