package tsdb

import (
	"errors"
	"math"
	"time"
)

// Modes holds the per-resolution aggregation mode for one write, read
// from the AGGREGATE_MINUTE/AGGREGATE_HOUR/AGGREGATE_DAY environment
// variables.
type Modes struct {
	Minute int
	Hour   int
	Day    int
}

// aggValue is the 4-tuple (sum, count, min, max) an aggregate bucket
// holds.
type aggValue struct {
	Sum   float64
	Count uint64
	Min   float64
	Max   float64
}

func packAggValue(v aggValue) []byte {
	return Tuple{v.Sum, v.Count, v.Min, v.Max}.Pack()
}

func unpackAggValue(b []byte) (aggValue, error) {
	tup, err := Unpack(b)
	if err != nil {
		return aggValue{}, err
	}
	if len(tup) != 4 {
		return aggValue{}, errInvalidAggValue
	}
	return aggValue{
		Sum:   tup.Float(0),
		Count: tup.Uint(1),
		Min:   tup.Float(2),
		Max:   tup.Float(3),
	}, nil
}

var errInvalidAggValue = errors.New("tsdb: malformed aggregate value")

// carry is the inter-resolution state threaded from one resolution to
// the next coarser one. newAgg records whether the bucket just processed
// was newly created this cycle (its predecessor bucket existed), the
// signal a mode-2 resolution downstream requires before it runs at all.
type carry struct {
	lastTuple *aggValue
	lastDt    time.Time
	newAgg    bool
}

// cascadeResolutions applies a single raw sample to the minute, hour and
// day buckets in order, threading the carry state between them. Each
// resolution's mode gates whether it runs at all.
//
// The mode-2 carry is a documented hazard: when a bucket already exists,
// the carried tuple from the previous resolution is added into it rather
// than the raw value; when it doesn't exist, the carried tuple seeds it
// outright. Both branches are kept as-is, not reinterpreted, so a test
// can characterize the resulting behavior rather than silently
// "fixing" it.
func cascadeResolutions(t *Txn, resource, metric string, ts time.Time, v float64, modes Modes) error {
	resolutions := []struct {
		r    Resolution
		mode int
	}{
		{ResolutionMinute, modes.Minute},
		{ResolutionHour, modes.Hour},
		{ResolutionDay, modes.Day},
	}

	var c carry
	for _, rm := range resolutions {
		if rm.mode == 0 {
			continue
		}
		if rm.mode == 2 && !c.newAgg {
			continue
		}
		next, err := updateBucket(t, resource, metric, ts, v, rm.r, rm.mode, c.lastTuple)
		if err != nil {
			return err
		}
		c = next
	}
	return nil
}

// updateBucket performs the per-bucket update for resolution r,
// returning the carry to hand to the next coarser resolution.
func updateBucket(t *Txn, resource, metric string, ts time.Time, v float64, r Resolution, mode int, carriedLastTuple *aggValue) (carry, error) {
	ns := r.Namespace()
	bucketKey := prefixKey(ns, BucketTuple(resource, metric, ts, r))

	raw, err := t.Get(bucketKey)
	present := true
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			present = false
		} else {
			return carry{}, err
		}
	}

	var agg aggValue
	var out carry

	if present {
		agg, err = unpackAggValue(raw)
		if err != nil {
			return carry{}, err
		}
		if mode == 2 {
			if carriedLastTuple != nil {
				agg.Sum += carriedLastTuple.Sum
				agg.Count += carriedLastTuple.Count
				agg.Min = math.Min(agg.Min, carriedLastTuple.Min)
				agg.Max = math.Max(agg.Max, carriedLastTuple.Max)
			}
		} else {
			agg.Sum += v
			agg.Count++
			agg.Min = math.Min(agg.Min, v)
			agg.Max = math.Max(agg.Max, v)
		}
		out.newAgg = false
	} else {
		if mode == 2 && carriedLastTuple != nil {
			agg = *carriedLastTuple
		} else {
			agg = aggValue{Sum: v, Count: 1, Min: v, Max: v}
		}
		lastDt := decrementTime(ts, r)
		prevKey := prefixKey(ns, BucketTuple(resource, metric, lastDt, r))
		prevRaw, err := t.Get(prevKey)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				return carry{}, err
			}
			out.lastTuple = nil
			out.newAgg = false
		} else {
			pv, err := unpackAggValue(prevRaw)
			if err != nil {
				return carry{}, err
			}
			out.lastTuple = &pv
			out.newAgg = true
		}
		out.lastDt = lastDt
	}

	if err := t.Set(bucketKey, packAggValue(agg)); err != nil {
		return carry{}, err
	}
	return out, nil
}
