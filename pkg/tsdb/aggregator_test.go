package tsdb

import (
	"context"
	"testing"
	"time"
)

func getBucket(t *testing.T, store *Store, resource, metric string, ts time.Time, r Resolution) aggValue {
	t.Helper()
	var agg aggValue
	err := store.View(func(tx *Txn) error {
		key := prefixKey(r.Namespace(), BucketTuple(resource, metric, ts, r))
		raw, err := tx.Get(key)
		if err != nil {
			return err
		}
		agg, err = unpackAggValue(raw)
		return err
	})
	if err != nil {
		t.Fatalf("getBucket error: %v", err)
	}
	return agg
}

func TestCascadeResolutionsAllModesOne(t *testing.T) {
	store := openTestStore(t)
	modes := Modes{Minute: 1, Hour: 1, Day: 1}
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		return cascadeResolutions(tx, "r", "m.f", ts, 42, modes)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	for _, r := range []Resolution{ResolutionMinute, ResolutionHour, ResolutionDay} {
		agg := getBucket(t, store, "r", "m.f", ts, r)
		want := aggValue{Sum: 42, Count: 1, Min: 42, Max: 42}
		if agg != want {
			t.Errorf("%v bucket after first write = %+v, want %+v", r, agg, want)
		}
	}

	ts2 := ts.Add(30 * time.Second)
	err = store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		return cascadeResolutions(tx, "r", "m.f", ts2, 7, modes)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	for _, r := range []Resolution{ResolutionMinute, ResolutionHour, ResolutionDay} {
		agg := getBucket(t, store, "r", "m.f", ts2, r)
		want := aggValue{Sum: 49, Count: 2, Min: 7, Max: 42}
		if agg != want {
			t.Errorf("%v bucket after second write = %+v, want %+v", r, agg, want)
		}
	}
}

func TestCascadeResolutionsModeZeroSkipsResolution(t *testing.T) {
	store := openTestStore(t)
	modes := Modes{Minute: 1, Hour: 0, Day: 1}
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		return cascadeResolutions(tx, "r", "m.f", ts, 1, modes)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = store.View(func(tx *Txn) error {
		key := prefixKey(ResolutionHour.Namespace(), BucketTuple("r", "m.f", ts, ResolutionHour))
		_, getErr := tx.Get(key)
		if getErr == nil {
			t.Error("hour bucket should not exist when its mode is 0")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}
}

// TestCascadeResolutionsModeTwoCarrySemantics characterizes (does not
// "correct") the mode-2 carry hazard: a mode-2 resolution is skipped
// entirely unless the previous resolution produced a new-aggregation
// signal this cycle, and when it does run on a fresh bucket it seeds from
// the carried tuple rather than the raw sample.
func TestCascadeResolutionsModeTwoCarrySemantics(t *testing.T) {
	store := openTestStore(t)
	modes := Modes{Minute: 1, Hour: 2, Day: 1}
	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)

	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		return cascadeResolutions(tx, "r", "m.f", ts, 42, modes)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	err = store.View(func(tx *Txn) error {
		key := prefixKey(ResolutionHour.Namespace(), BucketTuple("r", "m.f", ts, ResolutionHour))
		_, getErr := tx.Get(key)
		if getErr == nil {
			t.Error("mode-2 hour bucket should not be created on the very first sample: minute had no predecessor bucket, so no new-aggregation signal reached hour")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View error: %v", err)
	}

	// A second sample one minute later gives minute a predecessor bucket
	// (the first minute's), producing a new-aggregation signal that lets
	// the mode-2 hour resolution run, seeded from the carried tuple, not
	// from the raw value 7.
	ts2 := ts.Add(1 * time.Minute)
	err = store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		return cascadeResolutions(tx, "r", "m.f", ts2, 7, modes)
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	hour := getBucket(t, store, "r", "m.f", ts2, ResolutionHour)
	want := aggValue{Sum: 42, Count: 1, Min: 42, Max: 42}
	if hour != want {
		t.Errorf("mode-2 hour bucket = %+v, want %+v (seeded from carried minute tuple, not the raw sample)", hour, want)
	}
}
