package ownmapdal

import (
	"context"
	"runtime"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/simon04/OpenCartonaut/ownmap"
)

type PBFReader interface {
	Scan() bool
	Object() osm.Object
	Err() error
	FullyScannedBytes() int64
	TotalSize() int64
}

type DefaultPBFReader struct {
	*osmpbf.Scanner
	totalSize int64
}

func NewDefaultPBFReader(ctx context.Context, file gofs.File) (*DefaultPBFReader, errorsx.Error) {
	fileInfo, err := file.Stat()
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	scanner := osmpbf.New(ctx, file, runtime.NumCPU())
	scanner.SkipRelations = true

	return &DefaultPBFReader{scanner, fileInfo.Size()}, nil
}

func (r *DefaultPBFReader) TotalSize() int64 {
	return r.totalSize
}

// ReadPBF scans every object of the reader into features. When bounds is set,
// only features overlapping it are kept.
func ReadPBF(pbfReader PBFReader, subpart string, bounds *orb.Bound) ([]*ownmap.Feature, errorsx.Error) {
	builder := ownmap.NewOSMFeatureBuilder(subpart)
	for pbfReader.Scan() {
		builder.AddObject(pbfReader.Object())
	}

	if pbfReader.Err() != nil {
		return nil, errorsx.Wrap(pbfReader.Err())
	}

	features := builder.Features()
	if bounds == nil {
		return features, nil
	}

	var inBounds []*ownmap.Feature
	for _, feature := range features {
		if ownmap.Overlaps(*bounds, feature.Geometry.Bound()) {
			inBounds = append(inBounds, feature)
		}
	}
	return inBounds, nil
}
