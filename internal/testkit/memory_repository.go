package testkit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gocmr/domain/core"
	"gocmr/ports"
)

// InMemoryRunRepository implements RunRepository with a mutex-guarded map.
// Used in tests and when no database is configured.
type InMemoryRunRepository struct {
	mu   sync.RWMutex
	runs map[core.RunID]ports.RunRecord
}

// NewInMemoryRunRepository creates an empty in-memory repository.
func NewInMemoryRunRepository() *InMemoryRunRepository {
	return &InMemoryRunRepository{runs: make(map[core.RunID]ports.RunRecord)}
}

// SaveRun stores or replaces a record.
func (r *InMemoryRunRepository) SaveRun(ctx context.Context, record ports.RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[record.Manifest.RunID] = record
	return nil
}

// GetRun retrieves a record by ID.
func (r *InMemoryRunRepository) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	return &record, nil
}

// ListRuns returns up to limit records, newest first.
func (r *InMemoryRunRepository) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]ports.RunRecord, 0, len(r.runs))
	for _, record := range r.runs {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[j].Manifest.CreatedAt.Before(records[i].Manifest.CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// SaveSummaries attaches posterior summaries to an existing record.
func (r *InMemoryRunRepository) SaveSummaries(ctx context.Context, id core.RunID, summaries []ports.ParameterSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.runs[id]
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrRunNotFound, id)
	}
	record.Summaries = summaries
	r.runs[id] = record
	return nil
}

var _ ports.RunRepository = (*InMemoryRunRepository)(nil)
