package server

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tsfdb/tsfdb-go/pkg/config"
	"github.com/tsfdb/tsfdb-go/pkg/server/monitor"
	"github.com/tsfdb/tsfdb-go/pkg/tsdb"
)

// RunBadgerGC runs BadgerDB garbage collection periodically to reclaim
// value-log disk space. This is the only periodic background job the
// core needs: raw samples are never deleted and aggregates are maintained
// incrementally, so there is no downsampling/compaction job to schedule.
func RunBadgerGC(store *tsdb.Store, gcMonitor *monitor.GCMonitor, stop chan bool, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(config.BadgerGCInterval)
	defer ticker.Stop()

	log.Printf("BadgerDB GC scheduler started (runs every %v)", config.BadgerGCInterval)

	for {
		select {
		case <-ticker.C:
			log.Println("running BadgerDB garbage collection...")
			start := time.Now()

			err := store.RunValueLogGC(0.5)
			switch {
			case err == nil:
				gcMonitor.RecordSuccess()
				log.Printf("GC completed in %v (disk space reclaimed)", time.Since(start).Round(time.Millisecond))
			case errors.Is(err, badger.ErrNoRewrite):
				gcMonitor.RecordSuccess()
				log.Printf("GC completed in %v (no rewrite needed)", time.Since(start).Round(time.Millisecond))
			default:
				gcMonitor.RecordFailure(err)
				log.Printf("GC failed: %v", err)
			}
		case <-stop:
			log.Println("stopping BadgerDB GC scheduler")
			return
		}
	}
}
