/*
Package tsdb implements a time-series database façade over BadgerDB: an
ordered, transactional key-value store that backs per-second samples and
their minute/hour/day rollups.

# Key Schema

Every sample is addressed by a tuple (resource, metric, year, month, day,
[hour, [minute, [second]]]) packed into an order-preserving byte string
(see Tuple.Pack). Packing a shorter tuple always yields a strict byte
prefix of packing any longer tuple that extends it, so a single range scan
enumerates a (resource, metric) pair's points in chronological order.

# Namespaces

Five sibling namespaces live under the root: available_metrics,
available_resources, metric_per_minute, metric_per_hour and
metric_per_day. Raw per-second samples live directly in the root. See
Directories.

# Ingest and Query

Writer.Write ingests a line-protocol batch inside a single transaction,
deriving a metric name via GenerateMetric, writing the raw sample and
cascading aggregate updates (see cascadeResolutions). Facade.Fetch answers
a resource.metric range query by picking the coarsest resolution whose
bucket width matches the requested window (see SelectResolution) and
reconstructing [value, unix_seconds] pairs (see Reader.ReadRange).

# Usage Example

	store, err := tsdb.Open(tsdb.StoreConfig{Path: "./data"})
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	facade := tsdb.NewFacade(store, tsdb.ModesFromEnv())
	if err := facade.Write(ctx, batchText); err != nil {
	    log.Printf("ingest error: %v", err)
	}

	result, err := facade.Fetch(ctx, "host1.cpu.*", "-1h", "", "")
*/
package tsdb
