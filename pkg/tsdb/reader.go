package tsdb

import "time"

// Datapoint is one reconstructed `[value, unix_seconds]` pair.
type Datapoint struct {
	Value       float64
	UnixSeconds int64
}

// Reader implements the range scan and reconstruction for a fetch,
// sharing the Store's process-wide handle.
type Reader struct {
	store *Store
}

// NewReader builds a Reader bound to store.
func NewReader(store *Store) *Reader {
	return &Reader{store: store}
}

// ReadRange performs resolution selection and bound computation via
// PlanRange, then scans and reconstructs datapoints for one
// (resource, metric) pair, in chronological scan order.
func (rd *Reader) ReadRange(resource, metric string, start, stop time.Time) ([]Datapoint, *Error) {
	var points []Datapoint
	var cerr *Error

	err := rd.store.View(func(t *Txn) error {
		lo, hi, r, planErr := PlanRange(t, resource, metric, start, stop)
		if planErr != nil {
			cerr = planErr
			return nil
		}
		ns := r.Namespace()

		return t.ScanRange(lo, hi, func(key, value []byte) error {
			dp, ok, err := reconstructDatapoint(key, value, ns, r)
			if err != nil {
				return err
			}
			if ok {
				points = append(points, dp)
			}
			return nil
		})
	})
	if cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, storeError(err)
	}
	return points, nil
}

func reconstructDatapoint(key, value []byte, ns Namespace, r Resolution) (Datapoint, bool, error) {
	stripped := key[len(ns.prefix()):]
	keyTup, err := Unpack(stripped)
	if err != nil {
		return Datapoint{}, false, err
	}
	ts := timestampFromTuple(keyTup, r)

	if r == ResolutionSecond {
		valTup, err := Unpack(value)
		if err != nil || len(valTup) != 1 {
			return Datapoint{}, false, errInvalidAggValue
		}
		return Datapoint{Value: valTup.Float(0), UnixSeconds: ts.Unix()}, true, nil
	}

	agg, err := unpackAggValue(value)
	if err != nil {
		return Datapoint{}, false, err
	}
	if agg.Count == 0 {
		return Datapoint{}, false, nil
	}
	// Real division, never truncating integer division.
	return Datapoint{Value: agg.Sum / float64(agg.Count), UnixSeconds: ts.Unix()}, true, nil
}
