package tsdb

import "time"

// Resolution is one of the four granularities the aggregator and range
// planner reason about (spec GLOSSARY).
type Resolution int

const (
	ResolutionSecond Resolution = iota
	ResolutionMinute
	ResolutionHour
	ResolutionDay
)

func (r Resolution) String() string {
	switch r {
	case ResolutionSecond:
		return "second"
	case ResolutionMinute:
		return "minute"
	case ResolutionHour:
		return "hour"
	case ResolutionDay:
		return "day"
	default:
		return "unknown"
	}
}

// Namespace returns the directory a resolution's buckets live in.
func (r Resolution) Namespace() Namespace {
	switch r {
	case ResolutionSecond:
		return NamespaceRaw
	case ResolutionMinute:
		return NamespacePerMinute
	case ResolutionHour:
		return NamespacePerHour
	case ResolutionDay:
		return NamespacePerDay
	default:
		return NamespaceRaw
	}
}

// DayTuple builds the day-shape key: (resource, metric, Y, M, D).
func DayTuple(resource, metric string, t time.Time) Tuple {
	y, m, d := t.Date()
	return Tuple{resource, metric, uint64(y), uint64(m), uint64(d)}
}

// HourTuple extends DayTuple with the hour field.
func HourTuple(resource, metric string, t time.Time) Tuple {
	return append(DayTuple(resource, metric, t), uint64(t.Hour()))
}

// MinuteTuple extends HourTuple with the minute field.
func MinuteTuple(resource, metric string, t time.Time) Tuple {
	return append(HourTuple(resource, metric, t), uint64(t.Minute()))
}

// SecondTuple extends MinuteTuple with the second field.
func SecondTuple(resource, metric string, t time.Time) Tuple {
	return append(MinuteTuple(resource, metric, t), uint64(t.Second()))
}

// BucketTuple builds the canonical key-shape tuple for t at resolution r,
// truncating fields finer than r: each shape is generated by appending
// one field to the next-coarser shape.
func BucketTuple(resource, metric string, t time.Time, r Resolution) Tuple {
	switch r {
	case ResolutionDay:
		return DayTuple(resource, metric, t)
	case ResolutionHour:
		return HourTuple(resource, metric, t)
	case ResolutionMinute:
		return MinuteTuple(resource, metric, t)
	default:
		return SecondTuple(resource, metric, t)
	}
}

// decrementTime moves t back by one bucket width at resolution r.
func decrementTime(t time.Time, r Resolution) time.Time {
	switch r {
	case ResolutionMinute:
		return t.Add(-1 * time.Minute)
	case ResolutionHour:
		return t.Add(-1 * time.Hour)
	case ResolutionDay:
		return t.AddDate(0, 0, -1)
	default:
		return t
	}
}

// timestampFromTuple reconstructs the UTC time a key tuple addresses,
// reading its last N components per resolution (6, 5, 4, or 3 depending
// on resolution) via a calendar constructor. offset is the index of the
// year field (2, since (resource, metric) precede it).
func timestampFromTuple(tup Tuple, r Resolution) time.Time {
	const offset = 2
	year := int(tup.Uint(offset))
	month := time.Month(tup.Uint(offset + 1))
	day := int(tup.Uint(offset + 2))
	hour, minute, second := 0, 0, 0
	if r == ResolutionHour || r == ResolutionMinute || r == ResolutionSecond {
		hour = int(tup.Uint(offset + 3))
	}
	if r == ResolutionMinute || r == ResolutionSecond {
		minute = int(tup.Uint(offset + 4))
	}
	if r == ResolutionSecond {
		second = int(tup.Uint(offset + 5))
	}
	return time.Date(year, month, day, hour, minute, second, 0, time.UTC)
}
