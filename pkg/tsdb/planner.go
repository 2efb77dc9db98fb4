package tsdb

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativeExprRe = regexp.MustCompile(`^(-?\d+)(mo|min|[smhdwy])$`)

// parseTimeExpr parses an absolute timestamp (RFC3339, or a bare date) or
// a relative expression of the form `-?<digits><unit>` with
// unit ∈ {s, min, h, d, w, mo, y}. now anchors relative expressions.
func parseTimeExpr(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if m := relativeExprRe.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("tsdb: invalid relative time expression %q", raw)
		}
		switch m[2] {
		case "s":
			return now.Add(time.Duration(n) * time.Second), nil
		case "min":
			return now.Add(time.Duration(n) * time.Minute), nil
		case "h":
			return now.Add(time.Duration(n) * time.Hour), nil
		case "d":
			return now.AddDate(0, 0, n), nil
		case "w":
			return now.AddDate(0, 0, n*7), nil
		case "mo":
			return now.AddDate(0, n, 0), nil
		case "y":
			return now.AddDate(n, 0, 0), nil
		}
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("tsdb: unparsable time expression %q", raw)
}

// truncateToMinute rounds down to minute boundary.
func truncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// ParseStartStop resolves the start/stop query params, defaulting to
// [now-10min, now] and truncating both to the minute.
func ParseStartStop(startRaw, stopRaw string, now time.Time) (start, stop time.Time, cerr *Error) {
	if startRaw == "" {
		start = now.Add(-10 * time.Minute)
	} else {
		t, err := parseTimeExpr(startRaw, now)
		if err != nil {
			return time.Time{}, time.Time{}, inputError("%v", err)
		}
		start = t
	}

	if stopRaw == "" {
		stop = now
	} else {
		t, err := parseTimeExpr(stopRaw, now)
		if err != nil {
			return time.Time{}, time.Time{}, inputError("%v", err)
		}
		stop = t
	}

	return truncateToMinute(start), truncateToMinute(stop), nil
}

// SelectResolution picks the resolution whose bucket width matches the
// requested window.
func SelectResolution(start, stop time.Time) Resolution {
	hours := stop.Sub(start).Hours()
	hours = math.Round(hours*100) / 100
	switch {
	case hours <= 1:
		return ResolutionSecond
	case hours <= 48:
		return ResolutionMinute
	case hours <= 1440:
		return ResolutionHour
	default:
		return ResolutionDay
	}
}

func bucketDelta(r Resolution) time.Duration {
	switch r {
	case ResolutionSecond:
		return time.Second
	case ResolutionMinute:
		return time.Minute
	case ResolutionHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// PlanRange computes the half-open byte-key bounds for a [start, stop]
// window against (resource, metric), verifying the chosen namespace
// exists first.
func PlanRange(t *Txn, resource, metric string, start, stop time.Time) (lo, hi []byte, r Resolution, cerr *Error) {
	r = SelectResolution(start, stop)
	ns := r.Namespace()

	if r != ResolutionSecond {
		dirs := Directories{}
		if notReadyErr, err := dirs.Open(t, ns); err != nil {
			return nil, nil, r, storeError(err)
		} else if notReadyErr != nil {
			return nil, nil, r, notReadyErr
		}
	}

	lo = prefixKey(ns, BucketTuple(resource, metric, start, r))
	hiTime := stop.Add(bucketDelta(r))
	hi = prefixKey(ns, BucketTuple(resource, metric, hiTime, r))
	return lo, hi, r, nil
}
