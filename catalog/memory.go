package catalog

import (
	"context"
	"sync"

	"github.com/c360/syndicate/errors"
)

// Memory is an in-process Catalog backed by a map. It serves tests and the
// standalone demo daemon; production deployments implement Catalog against
// the host application's store.
type Memory struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
	reindexs map[string]int
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		datasets: make(map[string]*Dataset),
		reindexs: make(map[string]int),
	}
}

// Put stores or replaces a dataset record.
func (m *Memory) Put(ds *Dataset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[ds.ID] = ds.Clone()
}

// PackageShow returns a copy of the stored dataset.
func (m *Memory) PackageShow(_ context.Context, id string) (*Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.datasets[id]
	if !ok {
		return nil, errors.ErrDatasetNotFound
	}
	return ds.Clone(), nil
}

// UpsertExtra inserts or updates a single extra entry on the dataset.
func (m *Memory) UpsertExtra(_ context.Context, packageID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ds, ok := m.datasets[packageID]
	if !ok {
		return errors.ErrDatasetNotFound
	}

	for i, e := range ds.Extras {
		if e.Key == key {
			ds.Extras[i].Value = value
			return nil
		}
	}
	ds.Extras = append(ds.Extras, Extra{Key: key, Value: value})
	return nil
}

// Reindex records the reindex request. Tests assert on the count.
func (m *Memory) Reindex(_ context.Context, packageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.datasets[packageID]; !ok {
		return errors.ErrDatasetNotFound
	}
	m.reindexs[packageID]++
	return nil
}

// ReindexCount returns how many times Reindex was called for the dataset.
func (m *Memory) ReindexCount(packageID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reindexs[packageID]
}
