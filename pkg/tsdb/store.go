package tsdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// StoreConfig configures the BadgerDB-backed KV engine. The memory
// tuning defaults to a small memtable with proportionally small
// block/index caches, suitable for a single-process deployment.
type StoreConfig struct {
	// Path to store database files. Empty with InMemory=true for tests.
	Path string

	// InMemory runs BadgerDB without touching disk (used by tests).
	InMemory bool

	// MaxMemoryMB sizes BadgerDB's three memtables at MaxMemoryMB/3 each;
	// the block and index caches add a half and a quarter of one memtable
	// on top. 0 uses 16 MB memtables (48 MB of memtables in total).
	MaxMemoryMB int64
}

const defaultMaxMemoryMB = 48

// Store is the process-wide handle onto the ordered, transactional KV
// store: a single instance is opened once per process and shared
// across every Writer/Reader call.
type Store struct {
	db *badger.DB
}

// Open initializes the BadgerDB engine with conservative memory-bounded
// tuning.
func Open(cfg StoreConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	memTableSize := cfg.MaxMemoryMB * 1024 * 1024 / 3
	if cfg.MaxMemoryMB <= 0 {
		memTableSize = 16 * 1024 * 1024
	}
	blockCacheSize := memTableSize / 2
	indexCacheSize := memTableSize / 4

	opts = opts.
		WithLogger(nil).
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithNumMemtables(3).
		WithBlockCacheSize(blockCacheSize).
		WithIndexCacheSize(indexCacheSize).
		WithMaxLevels(4).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithNumCompactors(2).
		WithValueLogFileSize(64 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("tsdb: failed to open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close shuts the engine down.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunValueLogGC reclaims BadgerDB value-log space, adapted from
// pkg/storage/badger/badger.go's RunGC; used by the background GC job in
// cmd/server, not by the core write/read path.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// Size reports the on-disk LSM + value-log size in bytes.
func (s *Store) Size() (lsm, vlog int64) {
	return s.db.Size()
}

// Txn wraps a single BadgerDB transaction with the tuple-keyed
// get/set/scan/exists operations the core components need.
type Txn struct {
	txn *badger.Txn
}

// ErrNotFound is returned by Txn.Get when the key is absent.
var ErrNotFound = errors.New("tsdb: key not found")

// Get reads the raw value stored at key. Returns ErrNotFound if absent.
func (t *Txn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var val []byte
	err = item.Value(func(v []byte) error {
		val = append([]byte{}, v...)
		return nil
	})
	return val, err
}

// Exists reports whether key is present.
func (t *Txn) Exists(key []byte) (bool, error) {
	_, err := t.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Set writes value at key.
func (t *Txn) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

// ScanFunc is called once per key/value pair during a scan, in key order.
// Returning an error aborts the scan.
type ScanFunc func(key, value []byte) error

// ScanRange iterates all keys in [lo, hi) in ascending order.
func (t *Txn) ScanRange(lo, hi []byte, fn ScanFunc) error {
	opts := badger.DefaultIteratorOptions
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(lo); it.Valid(); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		if hi != nil && compareBytes(key, hi) >= 0 {
			break
		}
		var val []byte
		if err := item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		}); err != nil {
			return err
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}

// ScanPrefix iterates every key sharing the given byte prefix.
func (t *Txn) ScanPrefix(prefix []byte, fn ScanFunc) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		var val []byte
		if err := item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		}); err != nil {
			return err
		}
		if err := fn(key, val); err != nil {
			return err
		}
	}
	return nil
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// TxnOptions configures retry/timeout behavior for a transaction: a
// bounded number of conflict retries, each within an overall deadline.
type TxnOptions struct {
	RetryLimit int
	Timeout    time.Duration
}

// DefaultTxnOptions is the retry_limit=3, timeout=1000ms policy used for
// every ingest transaction.
var DefaultTxnOptions = TxnOptions{RetryLimit: 3, Timeout: 1 * time.Second}

// Update runs fn inside a read-write transaction, retrying on conflict up
// to opts.RetryLimit times and aborting if opts.Timeout elapses. Any
// underlying KV error is the caller's to translate into a 503.
func (s *Store) Update(ctx context.Context, opts TxnOptions, fn func(t *Txn) error) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= opts.RetryLimit; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("tsdb: transaction timed out after %d attempts: %w", attempt, lastErr)
			default:
			}
		}

		done := make(chan error, 1)
		go func() {
			done <- s.db.Update(func(bt *badger.Txn) error {
				return fn(&Txn{txn: bt})
			})
		}()

		select {
		case err := <-done:
			if err == nil {
				return nil
			}
			if errors.Is(err, badger.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		case <-ctx.Done():
			return fmt.Errorf("tsdb: transaction cancelled: %w", ctx.Err())
		}
	}
	return fmt.Errorf("tsdb: transaction exhausted %d retries: %w", opts.RetryLimit, lastErr)
}

// View runs fn inside a read-only transaction.
func (s *Store) View(fn func(t *Txn) error) error {
	return s.db.View(func(bt *badger.Txn) error {
		return fn(&Txn{txn: bt})
	})
}
