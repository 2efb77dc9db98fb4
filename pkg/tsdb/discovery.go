package tsdb

import (
	"regexp"
)

// MetricDescriptor is the per-metric record find_metrics produces: a
// mapping metric -> {id, name, column, measurement, max_value:null,
// min_value:null, priority:0, unit:''} with all string fields equal to
// the metric path.
type MetricDescriptor struct {
	ID          string
	Name        string
	Column      string
	Measurement string
	MaxValue    *float64
	MinValue    *float64
	Priority    int
	Unit        string
}

// Discovery implements enumeration of resources and per-resource
// metrics, and regex-filtering for fan-out queries.
type Discovery struct {
	store *Store
}

// NewDiscovery builds a Discovery bound to store.
func NewDiscovery(store *Store) *Discovery {
	return &Discovery{store: store}
}

// FindMetrics scans available_metrics under the resource prefix and
// projects the metric-path component of each key.
func (d *Discovery) FindMetrics(resource string) (map[string]MetricDescriptor, *Error) {
	out := make(map[string]MetricDescriptor)
	ns := NamespaceAvailableMetrics

	err := d.store.View(func(t *Txn) error {
		dirs := Directories{}
		notReadyErr, openErr := dirs.Open(t, ns)
		if openErr != nil {
			return openErr
		}
		if notReadyErr != nil {
			return notReadyErr
		}

		prefix := prefixKey(ns, Tuple{resource})
		return t.ScanPrefix(prefix, func(key, _ []byte) error {
			stripped := key[len(ns.prefix()):]
			tup, err := Unpack(stripped)
			if err != nil || len(tup) != 3 {
				return nil
			}
			metricPath := tup.String(2)
			out[metricPath] = MetricDescriptor{
				ID:          metricPath,
				Name:        metricPath,
				Column:      metricPath,
				Measurement: metricPath,
				Priority:    0,
				Unit:        "",
			}
			return nil
		})
	})
	if err != nil {
		if ce, ok := err.(*Error); ok {
			return nil, ce
		}
		return nil, storeError(err)
	}
	return out, nil
}

// FindResources scans available_resources and keeps only entries whose
// unpacked name fully matches ^pattern$.
func (d *Discovery) FindResources(pattern string) ([]string, *Error) {
	re, err := regexp.Compile("^" + pattern + "$")
	if err != nil {
		return nil, inputError("invalid resource pattern %q: %v", pattern, err)
	}

	var out []string
	ns := NamespaceAvailableResources

	storeErr := d.store.View(func(t *Txn) error {
		dirs := Directories{}
		notReadyErr, openErr := dirs.Open(t, ns)
		if openErr != nil {
			return openErr
		}
		if notReadyErr != nil {
			return notReadyErr
		}

		return t.ScanPrefix(ns.prefix(), func(key, _ []byte) error {
			stripped := key[len(ns.prefix()):]
			tup, err := Unpack(stripped)
			if err != nil || len(tup) != 1 {
				return nil
			}
			name := tup.String(0)
			if re.MatchString(name) {
				out = append(out, name)
			}
			return nil
		})
	})
	if storeErr != nil {
		if ce, ok := storeErr.(*Error); ok {
			return nil, ce
		}
		return nil, storeError(storeErr)
	}
	return out, nil
}
