package server

import (
	"log"
	"os"
	"strconv"

	"github.com/tsfdb/tsfdb-go/pkg/config"
	"github.com/tsfdb/tsfdb-go/pkg/ingest"
	"github.com/tsfdb/tsfdb-go/pkg/query"
	"github.com/tsfdb/tsfdb-go/pkg/server/monitor"
	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

// Config holds server configuration.
type Config struct {
	MaxStorageGB int64
	MaxMemoryMB  int64
	DataDir      string
	Port         string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() Config {
	maxStorageGB := getEnvInt64("TSFDB_MAX_STORAGE_GB", config.DefaultMaxStorageGB)
	maxMemoryMB := getEnvInt64("TSFDB_MAX_MEMORY_MB", config.DefaultMaxMemoryMB)
	port := getPort()

	dataDir := "./data/tsfdb"
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	return Config{
		MaxStorageGB: maxStorageGB,
		MaxMemoryMB:  maxMemoryMB,
		DataDir:      dataDir,
		Port:         port,
	}
}

// InitializeStore opens the BadgerDB-backed core engine with the given
// configuration and wraps it in a ready-to-use Facade.
func InitializeStore(cfg Config) (*tsdb.Store, *tsdb.Facade, error) {
	log.Println("Initializing BadgerDB store with Snappy compression...")
	store, err := tsdb.Open(tsdb.StoreConfig{
		Path:        cfg.DataDir,
		MaxMemoryMB: cfg.MaxMemoryMB,
	})
	if err != nil {
		return nil, nil, err
	}
	log.Println("BadgerDB store initialized successfully")

	facade := tsdb.NewFacade(store, tsdb.ModesFromEnv())
	return store, facade, nil
}

// InitializeHandlers creates and configures all request handlers.
func InitializeHandlers(facade *tsdb.Facade) (*ingest.Handler, *query.Handler) {
	ingestHandler := ingest.NewHandler(facade)
	log.Println("Ingest handler created (line-protocol write path)")

	queryHandler := query.NewHandler(facade)
	log.Println("Query handler created (fetch/find_metrics/find_resources)")

	return ingestHandler, queryHandler
}

// InitializeGCMonitor creates the BadgerDB GC health monitor.
func InitializeGCMonitor() *monitor.GCMonitor {
	log.Printf("Value-log GC scheduler ready (runs every %v)", config.BadgerGCInterval)
	return &monitor.GCMonitor{}
}

// getEnvInt64 gets an int64 from environment variable or returns default.
func getEnvInt64(key string, defaultValue int64) int64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
		log.Printf("Invalid value for %s: %q, using default %d", key, val, defaultValue)
	}
	return defaultValue
}

// getPort gets the server port from PORT environment variable or returns default.
func getPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return config.DefaultPort
}
