package tsdb

import (
	"context"
	"testing"
	"time"
)

func TestReaderReadRangeRaw(t *testing.T) {
	store := openTestStore(t)
	resource, metric := "host1", "cpu.value"
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		if err := (Directories{}).CreateOrOpen(tx, NamespacePerMinute); err != nil {
			return err
		}
		for i, v := range []float64{10, 20, 30} {
			ts := base.Add(time.Duration(i) * time.Second)
			key := prefixKey(NamespaceRaw, SecondTuple(resource, metric, ts))
			if err := tx.Set(key, Tuple{v}.Pack()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	reader := NewReader(store)
	points, cerr := reader.ReadRange(resource, metric, base, base.Add(2*time.Second))
	if cerr != nil {
		t.Fatalf("ReadRange() error: %v", cerr)
	}
	if len(points) != 3 {
		t.Fatalf("ReadRange() returned %d points, want 3", len(points))
	}
	for i, want := range []float64{10, 20, 30} {
		if points[i].Value != want {
			t.Errorf("points[%d].Value = %v, want %v", i, points[i].Value, want)
		}
		if points[i].UnixSeconds != base.Add(time.Duration(i)*time.Second).Unix() {
			t.Errorf("points[%d].UnixSeconds mismatch", i)
		}
	}
}

func TestReaderReadRangeAggregateDivision(t *testing.T) {
	store := openTestStore(t)
	resource, metric := "host1", "cpu.value"
	base := time.Date(2026, time.January, 1, 0, 4, 0, 0, time.UTC)

	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		if err := (Directories{}).CreateOrOpen(tx, NamespacePerMinute); err != nil {
			return err
		}
		key := prefixKey(NamespacePerMinute, BucketTuple(resource, metric, base, ResolutionMinute))
		return tx.Set(key, packAggValue(aggValue{Sum: 10, Count: 3, Min: 1, Max: 7}))
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}

	reader := NewReader(store)
	// request a window wide enough to select minute resolution (>1h).
	start := base.Add(-2 * time.Hour)
	stop := base.Add(2 * time.Hour)
	points, cerr := reader.ReadRange(resource, metric, start, stop)
	if cerr != nil {
		t.Fatalf("ReadRange() error: %v", cerr)
	}
	if len(points) != 1 {
		t.Fatalf("ReadRange() returned %d points, want 1", len(points))
	}
	if want := 10.0 / 3.0; points[0].Value != want {
		t.Errorf("points[0].Value = %v, want %v (real division)", points[0].Value, want)
	}
}

func TestReaderReadRangeMissingNamespace(t *testing.T) {
	store := openTestStore(t)
	reader := NewReader(store)

	start := time.Now().Add(-100 * 24 * time.Hour)
	stop := time.Now()
	_, cerr := reader.ReadRange("host1", "cpu.value", start, stop)
	if cerr == nil {
		t.Fatal("expected a not-ready error for an unopened namespace")
	}
	if cerr.Code != 503 {
		t.Errorf("error code = %d, want 503", cerr.Code)
	}
}
