package tsdb

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Writer implements the transactional batch ingest: parse, key,
// raw-write, metric registration, aggregate cascade, all within one
// transaction per batch.
type Writer struct {
	store *Store
	modes Modes

	mu             sync.Mutex
	knownMetrics   map[uint64]struct{}
	knownResources map[uint64]struct{}
}

// NewWriter builds a Writer bound to store, using modes for the
// Aggregator's per-resolution cascade.
func NewWriter(store *Store, modes Modes) *Writer {
	return &Writer{
		store:          store,
		modes:          modes,
		knownMetrics:   make(map[uint64]struct{}),
		knownResources: make(map[uint64]struct{}),
	}
}

// namespacesToEnsure are the directories every batch write creates-or-opens
// up front, regardless of aggregation mode: a resolution namespace is
// needed to hold a bucket even if this particular cycle skips updating it.
var namespacesToEnsure = []Namespace{
	NamespaceAvailableMetrics,
	NamespaceAvailableResources,
	NamespacePerMinute,
	NamespacePerHour,
	NamespacePerDay,
}

// Write ingests a line-protocol batch. Parse errors on individual lines
// are logged and skipped; the batch itself only fails on an underlying
// store error.
func (w *Writer) Write(ctx context.Context, batchText string) *Error {
	lines := ParseBatch(batchText)
	if len(lines) == 0 {
		return nil
	}

	dirs := Directories{}
	err := w.store.Update(ctx, DefaultTxnOptions, func(t *Txn) error {
		for _, ns := range namespacesToEnsure {
			if err := dirs.CreateOrOpen(t, ns); err != nil {
				return err
			}
		}

		for _, line := range lines {
			resource, ok := line.Tags["machine_id"]
			if !ok || resource == "" {
				log.Printf("tsdb: skipping line: missing machine_id tag")
				continue
			}

			if err := w.registerResource(t, resource); err != nil {
				return err
			}

			metric := GenerateMetric(line.Measurement, line.Tags)
			for name, fv := range line.Fields {
				metricPath := metric + "." + name

				admitted, err := w.writeRawOnce(t, resource, metricPath, line.Time, fv.Value)
				if err != nil {
					return err
				}
				if !admitted {
					continue
				}

				if err := w.registerMetric(t, resource, fv.Type, metricPath); err != nil {
					return err
				}
				if err := cascadeResolutions(t, resource, metricPath, line.Time, fv.Value, w.modes); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return storeError(err)
	}
	return nil
}

// writeRawOnce performs the atomic read-then-write immutability check: a
// raw key is written once; an equal re-write is a logged no-op, a
// differing re-write is a logged conflict, and admitted reports whether
// this call actually created the key (gating metric registration and the
// aggregate cascade).
func (w *Writer) writeRawOnce(t *Txn, resource, metricPath string, ts time.Time, value float64) (bool, error) {
	key := prefixKey(NamespaceRaw, SecondTuple(resource, metricPath, ts))

	existing, err := t.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return false, err
		}
		if err := t.Set(key, Tuple{value}.Pack()); err != nil {
			return false, err
		}
		return true, nil
	}

	tup, err := Unpack(existing)
	if err != nil || len(tup) != 1 {
		return false, errInvalidAggValue
	}
	oldValue := tup.Float(0)
	key2 := Tuple{resource, metricPath}
	if oldValue == value {
		logDuplicateWrite(key2, value)
	} else {
		logConflict(key2, oldValue, value)
	}
	return false, nil
}

func (w *Writer) registerResource(t *Txn, resource string) error {
	hash := xxhash.Sum64String(resource)

	w.mu.Lock()
	_, cached := w.knownResources[hash]
	w.mu.Unlock()
	if cached {
		return nil
	}

	key := prefixKey(NamespaceAvailableResources, Tuple{resource})
	exists, err := t.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		if err := t.Set(key, []byte{}); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.knownResources[hash] = struct{}{}
	w.mu.Unlock()
	return nil
}

func (w *Writer) registerMetric(t *Txn, resource, typeName, metricPath string) error {
	hash := xxhash.Sum64String(resource + "\x00" + typeName + "\x00" + metricPath)

	w.mu.Lock()
	_, cached := w.knownMetrics[hash]
	w.mu.Unlock()
	if cached {
		return nil
	}

	key := prefixKey(NamespaceAvailableMetrics, Tuple{resource, typeName, metricPath})
	exists, err := t.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		if err := t.Set(key, []byte{}); err != nil {
			return err
		}
	}

	w.mu.Lock()
	w.knownMetrics[hash] = struct{}{}
	w.mu.Unlock()
	return nil
}
