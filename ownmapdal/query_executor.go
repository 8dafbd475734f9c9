package ownmapdal

import (
	"bytes"
	"context"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/semaphore"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
)

type QueryExecutor struct {
	logger        *logpkg.Logger
	client        *OverpassClient
	maxConcurrent uint
}

func NewQueryExecutor(logger *logpkg.Logger, client *OverpassClient, maxConcurrent uint) *QueryExecutor {
	if maxConcurrent == 0 {
		maxConcurrent = 1
	}
	return &QueryExecutor{logger, client, maxConcurrent}
}

// Execute runs every subpart section of the query concurrently and collects the
// features, in section order, into one collection. A nil bounds leaves "{{bbox}}" as is.
func (e *QueryExecutor) Execute(ctx context.Context, name, query string, bounds *orb.Bound) (*ownmap.FeatureCollection, errorsx.Error) {
	sections := SplitQuerySubpart(query)

	results := make([][]*ownmap.Feature, len(sections))
	errs := make([]errorsx.Error, len(sections))

	sema := semaphore.NewSemaphore(e.maxConcurrent)
	for i, section := range sections {
		sema.Add()
		go func(i int, section QuerySection) {
			defer sema.Done()
			results[i], errs[i] = e.executeSection(ctx, section, bounds)
		}(i, section)
	}
	sema.Wait()

	var features []*ownmap.Feature
	for i, err := range errs {
		if err != nil {
			return nil, errorsx.Wrap(err, "subpart", sections[i].Subpart, "start", sections[i].Start)
		}
		features = append(features, results[i]...)
	}

	return ownmap.NewFeatureCollection(name, features), nil
}

func (e *QueryExecutor) executeSection(ctx context.Context, section QuerySection, bounds *orb.Bound) ([]*ownmap.Feature, errorsx.Error) {
	if section.IsGeoJSON() {
		return ReadGeoJSON([]byte(section.Body()), section.Subpart)
	}

	if section.IsBlank() {
		e.logger.Debug("skipping blank query section %q", section.Subpart)
		return nil, nil
	}

	query := section.Query
	if bounds != nil {
		query = SubstituteBBox(query, *bounds)
	}

	startTime := time.Now()
	body, err := e.client.Execute(ctx, query)
	if err != nil {
		return nil, err
	}

	features, err := ReadOSMXML(bytes.NewReader(body), section.Subpart)
	if err != nil {
		return nil, err
	}

	e.logger.Info("overpass query for subpart %q returned %d features in %s", section.Subpart, len(features), time.Since(startTime))
	return features, nil
}
