package tsdb

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// Facade is the top-level entry point wiring the whole engine together:
// Write() ingests a line-protocol batch, Fetch() serves a range query.
type Facade struct {
	Store     *Store
	Writer    *Writer
	Reader    *Reader
	Discovery *Discovery
}

// NewFacade wires an already-open store with the given aggregation modes
// and returns a ready-to-use Facade.
func NewFacade(store *Store, modes Modes) *Facade {
	return &Facade{
		Store:     store,
		Writer:    NewWriter(store, modes),
		Reader:    NewReader(store),
		Discovery: NewDiscovery(store),
	}
}

// Write ingests a line-protocol batch.
func (f *Facade) Write(ctx context.Context, batchText string) *Error {
	return f.Writer.Write(ctx, batchText)
}

// FetchResult is the query output: a mapping
// "resource.metric -> [[value, unix_seconds], ...]" sorted chronologically.
type FetchResult map[string][]Datapoint

// Fetch implements the top-level fetch(path, start, stop, step)
// operation. step is accepted for interface compatibility and currently
// unused.
func (f *Facade) Fetch(ctx context.Context, path, startRaw, stopRaw, step string) (FetchResult, *Error) {
	resource, metricExpr, found := strings.Cut(path, ".")
	if !found {
		metricExpr = "*"
	}

	if isRegexPattern(resource) {
		// A regex resource returns an empty mapping (documented behavior,
		// not a bug): find_resources exists and works but fetch never fans
		// out through it.
		return FetchResult{}, nil
	}

	start, stop, err := ParseStartStop(startRaw, stopRaw, time.Now())
	if err != nil {
		return nil, err
	}

	metrics, err := f.Discovery.FindMetrics(resource)
	if err != nil {
		return nil, err
	}

	var matched []string
	if metricExpr == "*" {
		for m := range metrics {
			matched = append(matched, m)
		}
	} else {
		re, reErr := regexp.Compile("^" + metricExpr + "$")
		if reErr != nil {
			return nil, inputError("invalid metric expression %q: %v", metricExpr, reErr)
		}
		for m := range metrics {
			if re.MatchString(m) {
				matched = append(matched, m)
			}
		}
	}

	if len(matched) == 0 {
		return nil, inputError("no metrics matched %q for resource %q", metricExpr, resource)
	}

	result := make(FetchResult, len(matched))
	for _, metric := range matched {
		points, err := f.Reader.ReadRange(resource, metric, start, stop)
		if err != nil {
			return nil, err
		}
		result[resource+"."+metric] = points
	}
	return result, nil
}
