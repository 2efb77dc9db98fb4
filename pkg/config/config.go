package config

import "time"

// Server defaults
const (
	DefaultPort        = "8080"
	DefaultMaxStorageGB = 1
	DefaultMaxMemoryMB  = 48
)

// Badger background jobs
const (
	BadgerGCInterval = 10 * time.Minute
)

// Ingest/query HTTP timeouts
const (
	IngestTimeout = 5 * time.Second
	QueryTimeout  = 10 * time.Second
)

// Transaction policy (retry_limit=3, timeout=1000ms)
const (
	TxnRetryLimit = 3
	TxnTimeout    = 1 * time.Second
)
