package tsdb

import (
	"context"
	"testing"
)

func seedDiscoveryFixtures(t *testing.T, store *Store) {
	t.Helper()
	err := store.Update(context.Background(), DefaultTxnOptions, func(tx *Txn) error {
		if err := (Directories{}).CreateOrOpen(tx, NamespaceAvailableResources); err != nil {
			return err
		}
		if err := (Directories{}).CreateOrOpen(tx, NamespaceAvailableMetrics); err != nil {
			return err
		}
		for _, resource := range []string{"host1", "host2"} {
			key := prefixKey(NamespaceAvailableResources, Tuple{resource})
			if err := tx.Set(key, []byte{}); err != nil {
				return err
			}
		}
		for _, metric := range []string{"cpu.value", "mem.value"} {
			key := prefixKey(NamespaceAvailableMetrics, Tuple{"host1", "float", metric})
			if err := tx.Set(key, []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed error: %v", err)
	}
}

func TestDiscoveryFindMetrics(t *testing.T) {
	store := openTestStore(t)
	seedDiscoveryFixtures(t, store)

	disc := NewDiscovery(store)
	metrics, cerr := disc.FindMetrics("host1")
	if cerr != nil {
		t.Fatalf("FindMetrics() error: %v", cerr)
	}
	if len(metrics) != 2 {
		t.Fatalf("FindMetrics() returned %d metrics, want 2", len(metrics))
	}
	desc, ok := metrics["cpu.value"]
	if !ok {
		t.Fatal("expected cpu.value in FindMetrics() result")
	}
	if desc.ID != "cpu.value" || desc.Name != "cpu.value" || desc.Unit != "" || desc.Priority != 0 {
		t.Errorf("descriptor fields = %+v", desc)
	}
}

func TestDiscoveryFindMetricsUnknownResource(t *testing.T) {
	store := openTestStore(t)
	seedDiscoveryFixtures(t, store)

	disc := NewDiscovery(store)
	metrics, cerr := disc.FindMetrics("host-does-not-exist")
	if cerr != nil {
		t.Fatalf("FindMetrics() error: %v", cerr)
	}
	if len(metrics) != 0 {
		t.Errorf("FindMetrics() for unknown resource = %d metrics, want 0", len(metrics))
	}
}

func TestDiscoveryFindResourcesPattern(t *testing.T) {
	store := openTestStore(t)
	seedDiscoveryFixtures(t, store)

	disc := NewDiscovery(store)
	resources, cerr := disc.FindResources("host.*")
	if cerr != nil {
		t.Fatalf("FindResources() error: %v", cerr)
	}
	if len(resources) != 2 {
		t.Errorf("FindResources(host.*) returned %d resources, want 2", len(resources))
	}

	resources, cerr = disc.FindResources("host1")
	if cerr != nil {
		t.Fatalf("FindResources() error: %v", cerr)
	}
	if len(resources) != 1 || resources[0] != "host1" {
		t.Errorf("FindResources(host1) = %v, want [host1]", resources)
	}
}

func TestDiscoveryFindResourcesInvalidPattern(t *testing.T) {
	store := openTestStore(t)
	disc := NewDiscovery(store)

	_, cerr := disc.FindResources("[invalid")
	if cerr == nil {
		t.Fatal("expected an error for an invalid regex pattern")
	}
	if cerr.Code != 400 {
		t.Errorf("error code = %d, want 400", cerr.Code)
	}
}
