package storage

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/Deltares/D-EcoImpact-sub000/pkg/runstore"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// Records are lost when the process exits.
type MemoryStorage struct {
	records map[string]*runstore.RunRecord
	mu      sync.RWMutex
}

var _ runstore.Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		records: make(map[string]*runstore.RunRecord),
	}
}

// Store persists a run record to memory.
func (s *MemoryStorage) Store(ctx context.Context, record *runstore.RunRecord) error {
	if err := ctx.Err(); err != nil {
		return runstore.NewStorageError("memory", "store", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.ID] = copyRecord(record)
	return nil
}

// Query retrieves run records matching the query filters, ordered by
// start time.
func (s *MemoryStorage) Query(ctx context.Context, query *runstore.Query) ([]*runstore.RunRecord, error) {
	if err := runstore.ValidateQuery(query); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []*runstore.RunRecord{}
	for _, record := range s.records {
		if matchesQuery(record, query) {
			results = append(results, copyRecord(record))
		}
	}

	slices.SortFunc(results, func(a, b *runstore.RunRecord) int {
		if c := a.StartedAt.Compare(b.StartedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if query.SortOrder != "asc" {
		slices.Reverse(results)
	}

	// Apply pagination
	start := min(query.Offset, len(results))
	results = results[start:]
	limit := query.Limit
	if limit == 0 {
		limit = runstore.DefaultLimit
	}
	if limit < len(results) {
		results = results[:limit]
	}

	return results, nil
}

// Count returns the number of run records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *runstore.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes run records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *runstore.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, record := range s.records {
		if matchesQuery(record, query) {
			delete(s.records, id)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*runstore.RunRecord)
	return nil
}

// Size returns the number of records in storage.
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *runstore.RunRecord, query *runstore.Query) bool {
	// Time range filter
	if query.StartTime != nil && record.StartedAt.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.StartedAt.After(*query.EndTime) {
		return false
	}

	if query.Status != "" && record.Status != query.Status {
		return false
	}
	if query.InputFile != "" && record.InputFile != query.InputFile {
		return false
	}
	if query.ModelName != "" && record.ModelName != query.ModelName {
		return false
	}
	if len(query.IDs) > 0 && !slices.Contains(query.IDs, record.ID) {
		return false
	}

	return true
}

func copyRecord(record *runstore.RunRecord) *runstore.RunRecord {
	c := *record
	c.Rules = slices.Clone(record.Rules)
	return &c
}
