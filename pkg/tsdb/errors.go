package tsdb

import (
	"fmt"
	"log"
)

// Error is the envelope returned at the core's boundary: input-error
// conditions map to code 400, not-ready/store-error conditions map to
// 503. Conflicts (raw immutability violations) are never returned as an
// Error; they are logged only (see writeRawOnce).
type Error struct {
	Code        int
	Description string
}

func (e *Error) Error() string {
	return e.Description
}

func inputError(format string, args ...any) *Error {
	return &Error{Code: 400, Description: fmt.Sprintf(format, args...)}
}

func notReady(format string, args ...any) *Error {
	return &Error{Code: 503, Description: fmt.Sprintf(format, args...)}
}

func storeError(err error) *Error {
	return &Error{Code: 503, Description: err.Error()}
}

// logConflict records a raw-immutability violation: a second write to
// an already-written raw key with a different value.
// It never aborts the batch and is never surfaced to the caller.
func logConflict(key Tuple, oldValue, newValue float64) {
	log.Printf("tsdb: key %v already exists with value %v, refusing to overwrite with %v", []any(key), oldValue, newValue)
}

func logDuplicateWrite(key Tuple, value float64) {
	log.Printf("tsdb: key %v already exists with the same value %v", []any(key), value)
}
