package ownmapdal

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"
	"github.com/simon04/OpenCartonaut/ownmap"
)

// ReadOSMXML reads an OSM XML document, such as the result of an Overpass "out geom" query.
func ReadOSMXML(r io.Reader, subpart string) ([]*ownmap.Feature, errorsx.Error) {
	doc := new(osm.OSM)
	err := xml.NewDecoder(r).Decode(doc)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	builder := ownmap.NewOSMFeatureBuilder(subpart)
	for _, node := range doc.Nodes {
		builder.AddNode(node)
	}
	for _, way := range doc.Ways {
		builder.AddWay(way)
	}

	return builder.Features(), nil
}

// ReadGeoJSON reads a FeatureCollection, a single Feature or a bare geometry.
func ReadGeoJSON(data []byte, subpart string) ([]*ownmap.Feature, errorsx.Error) {
	var typed struct {
		Type string `json:"type"`
	}
	err := json.Unmarshal(data, &typed)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	switch typed.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		features := make([]*ownmap.Feature, 0, len(fc.Features))
		for i, f := range fc.Features {
			features = append(features, ownmap.NewFeatureFromGeoJSON(f, subpart, i))
		}
		return features, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, errorsx.Wrap(err)
		}
		return []*ownmap.Feature{ownmap.NewFeatureFromGeoJSON(f, subpart, 0)}, nil
	case "":
		return nil, errorsx.Errorf("missing GeoJSON type")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, errorsx.Wrap(err, "type", typed.Type)
		}
		f := geojson.NewFeature(g.Geometry())
		return []*ownmap.Feature{ownmap.NewFeatureFromGeoJSON(f, subpart, 0)}, nil
	}
}

// ReadDataFile loads an OSM XML, PBF or GeoJSON file into a collection named after the file.
func ReadDataFile(ctx context.Context, fs gofs.Fs, filePath string) (*ownmap.FeatureCollection, errorsx.Error) {
	return readDataFile(ctx, fs, filePath, filepath.Base(filePath), nil)
}

func readDataFile(ctx context.Context, fs gofs.Fs, filePath, name string, onPBFReaderCreated func(PBFReader)) (*ownmap.FeatureCollection, errorsx.Error) {
	dataFileType, err := DataFileTypeFromPath(filePath)
	if err != nil {
		return nil, err
	}

	var features []*ownmap.Feature
	switch dataFileType {
	case DataFileTypeGeoJSON:
		data, err := fs.ReadFile(filePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
		features, err = ReadGeoJSON(data, "")
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
	case DataFileTypeOSMXML:
		file, err := fs.Open(filePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
		defer file.Close()

		features, err = ReadOSMXML(file, "")
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
	case DataFileTypePBF:
		file, err := fs.Open(filePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
		defer file.Close()

		pbfReader, err := NewDefaultPBFReader(ctx, file)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
		defer pbfReader.Close()

		if onPBFReaderCreated != nil {
			onPBFReaderCreated(pbfReader)
		}

		features, err = ReadPBF(pbfReader, "", nil)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}
	}

	return ownmap.NewFeatureCollection(name, features), nil
}
