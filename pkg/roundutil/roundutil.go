// Package roundutil provides opt-in post-processors over a fetched series:
// rounding the value or timestamp component to a given precision/base, and
// a central-difference numerical derivative. None of these run on the core
// query path; they are for callers (e.g. the HTTP surface) that want them.
package roundutil

import (
	"math"

	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

// roundBase rounds x to the nearest multiple of base, then to precision
// decimal places: round(base * round(x/base), precision).
func roundBase(x float64, precision int, base float64) float64 {
	if base == 0 {
		base = 1
	}
	rounded := base * math.Round(x/base)
	scale := math.Pow(10, float64(precision))
	return math.Round(rounded*scale) / scale
}

// RoundX rounds the value component of every datapoint in data to the
// nearest multiple of base, at precision decimal places.
func RoundX(data tsdb.FetchResult, precision int, base float64) tsdb.FetchResult {
	if len(data) == 0 {
		return tsdb.FetchResult{}
	}
	out := make(tsdb.FetchResult, len(data))
	for metric, points := range data {
		rounded := make([]tsdb.Datapoint, len(points))
		for i, p := range points {
			rounded[i] = tsdb.Datapoint{
				Value:       roundBase(p.Value, precision, base),
				UnixSeconds: p.UnixSeconds,
			}
		}
		out[metric] = rounded
	}
	return out
}

// RoundY rounds the timestamp component of every datapoint in data to the
// nearest multiple of base, at precision decimal places.
func RoundY(data tsdb.FetchResult, precision int, base float64) tsdb.FetchResult {
	if len(data) == 0 {
		return tsdb.FetchResult{}
	}
	out := make(tsdb.FetchResult, len(data))
	for metric, points := range data {
		rounded := make([]tsdb.Datapoint, len(points))
		for i, p := range points {
			rounded[i] = tsdb.Datapoint{
				Value:       p.Value,
				UnixSeconds: int64(roundBase(float64(p.UnixSeconds), precision, base)),
			}
		}
		out[metric] = rounded
	}
	return out
}

// Derivative computes a central-difference numerical gradient of value
// over timestamp for every metric in data: forward/backward difference at
// the endpoints, central difference (accounting for non-uniform spacing)
// in between. A metric with fewer than two datapoints maps to an empty
// slice.
func Derivative(data tsdb.FetchResult) tsdb.FetchResult {
	if len(data) == 0 {
		return tsdb.FetchResult{}
	}
	out := make(tsdb.FetchResult, len(data))
	for metric, points := range data {
		n := len(points)
		if n < 2 {
			out[metric] = []tsdb.Datapoint{}
			continue
		}
		deriv := make([]tsdb.Datapoint, n)
		for i := range points {
			var d float64
			switch {
			case i == 0:
				dt := float64(points[1].UnixSeconds - points[0].UnixSeconds)
				d = (points[1].Value - points[0].Value) / dt
			case i == n-1:
				dt := float64(points[n-1].UnixSeconds - points[n-2].UnixSeconds)
				d = (points[n-1].Value - points[n-2].Value) / dt
			default:
				hs := float64(points[i].UnixSeconds - points[i-1].UnixSeconds)
				hd := float64(points[i+1].UnixSeconds - points[i].UnixSeconds)
				d = (hs*hs*points[i+1].Value + (hd*hd-hs*hs)*points[i].Value - hd*hd*points[i-1].Value) /
					(hs * hd * (hd + hs))
			}
			deriv[i] = tsdb.Datapoint{Value: d, UnixSeconds: points[i].UnixSeconds}
		}
		out[metric] = deriv
	}
	return out
}
