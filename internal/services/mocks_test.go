package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

// MockPropertyRepository is a mock implementation of PropertyRepository for testing
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) FindByParcelID(ctx context.Context, parcelID string) (*models.PropertyView, error) {
	args := m.Called(ctx, parcelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	view, ok := args.Get(0).(*models.PropertyView)
	if !ok {
		return nil, args.Error(1)
	}
	return view, args.Error(1)
}

// MockReconcileRepository is a mock implementation of ReconcileRepository for testing
type MockReconcileRepository struct {
	mock.Mock
}

func (m *MockReconcileRepository) WithinRow(ctx context.Context, fn func(repository.RowWriter) error) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func (m *MockReconcileRepository) LinkAuctionHistory(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// memoryTracker keeps job state in maps, ignoring TTLs.
type memoryTracker struct {
	mu       sync.Mutex
	statuses map[string]models.JobStatus
	errs     map[string][]string
	progress map[string]models.JobProgress
	// history records every status written, per job.
	history map[string][]models.JobStatus
	failSet error
}

func newMemoryTracker() *memoryTracker {
	return &memoryTracker{
		statuses: map[string]models.JobStatus{},
		errs:     map[string][]string{},
		progress: map[string]models.JobProgress{},
		history:  map[string][]models.JobStatus{},
	}
}

func (t *memoryTracker) Set(_ context.Context, jobID string, status models.JobStatus, _ time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failSet != nil {
		return t.failSet
	}
	t.statuses[jobID] = status
	t.history[jobID] = append(t.history[jobID], status)
	return nil
}

func (t *memoryTracker) Get(_ context.Context, jobID string) (models.JobStatus, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.statuses[jobID]
	return s, ok, nil
}

func (t *memoryTracker) SetErrors(_ context.Context, jobID string, errs []string, _ time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errs[jobID] = append([]string(nil), errs...)
	return nil
}

func (t *memoryTracker) GetErrors(_ context.Context, jobID string) ([]string, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.errs[jobID]
	return e, ok, nil
}

func (t *memoryTracker) SetProgress(_ context.Context, jobID string, p models.JobProgress, _ time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress[jobID] = p
	return nil
}

func (t *memoryTracker) GetProgress(_ context.Context, jobID string) (*models.JobProgress, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.progress[jobID]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

// countingLinker records triggers.
type countingLinker struct {
	mu    sync.Mutex
	count int
}

func (l *countingLinker) Trigger() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
}

func (l *countingLinker) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
