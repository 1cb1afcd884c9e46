package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// fakeKV is an in-memory KV that records the TTL of each write.
type fakeKV struct {
	mu      sync.Mutex
	values  map[string]string
	ttls    map[string]time.Duration
	failErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return redis.NewStatusResult("", f.failErr)
	}
	switch v := value.(type) {
	case string:
		f.values[key] = v
	case []byte:
		f.values[key] = string(v)
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return redis.NewStringResult("", f.failErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

// expire drops a key as Redis would after its TTL.
func (f *fakeKV) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
}

func TestRedisTracker_StatusRoundTrip(t *testing.T) {
	kv := newFakeKV()
	tracker := NewRedisTracker(kv, 0)
	ctx := context.Background()

	require.NoError(t, tracker.Set(ctx, "job-1", models.JobPending, time.Hour))
	status, found, err := tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.JobPending, status)
	assert.Equal(t, time.Hour, kv.ttls["import_status:job-1"])

	require.NoError(t, tracker.Set(ctx, "job-1", models.JobSuccess, 30*time.Minute))
	status, _, err = tracker.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobSuccess, status)
	assert.Equal(t, 30*time.Minute, kv.ttls["import_status:job-1"], "each write refreshes the TTL")
}

func TestRedisTracker_NotFound(t *testing.T) {
	kv := newFakeKV()
	tracker := NewRedisTracker(kv, 0)
	ctx := context.Background()

	_, found, err := tracker.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, tracker.Set(ctx, "job-2", models.JobSuccess, time.Hour))
	kv.expire("import_status:job-2")

	_, found, err = tracker.Get(ctx, "job-2")
	require.NoError(t, err)
	assert.False(t, found, "expired and never-existed read the same")

	errs, found, err := tracker.GetErrors(ctx, "job-2")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, errs)
}

func TestRedisTracker_Errors(t *testing.T) {
	kv := newFakeKV()
	tracker := NewRedisTracker(kv, 3)
	ctx := context.Background()

	long := strings.Repeat("é", maxErrorLength+20)
	input := []string{"Row 2: bad date", long, "Row 5: x", "Row 9: dropped"}
	require.NoError(t, tracker.SetErrors(ctx, "job-3", input, time.Hour))
	assert.JSONEq(t, `["Row 2: bad date","`+strings.Repeat("é", maxErrorLength)+`","Row 5: x"]`,
		kv.values["import_errors:job-3"])

	errs, found, err := tracker.GetErrors(ctx, "job-3")
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, errs, 3)
	assert.Equal(t, "Row 2: bad date", errs[0])
	assert.Len(t, []rune(errs[1]), maxErrorLength)

	require.NoError(t, tracker.SetErrors(ctx, "job-4", nil, time.Hour))
	errs, found, err = tracker.GetErrors(ctx, "job-4")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, errs)
}

func TestRedisTracker_Progress(t *testing.T) {
	kv := newFakeKV()
	tracker := NewRedisTracker(kv, 0)
	ctx := context.Background()

	at := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	p := models.JobProgress{UpdatedAt: at, Total: 10, Succeeded: 8, Skipped: 1, Failed: 1}
	require.NoError(t, tracker.SetProgress(ctx, "job-5", p, time.Hour))

	got, found, err := tracker.GetProgress(ctx, "job-5")
	require.NoError(t, err)
	assert.True(t, found)
	require.NotNil(t, got)
	assert.True(t, at.Equal(got.UpdatedAt))
	assert.Equal(t, 8, got.Succeeded)
}

func TestRedisTracker_BackendFailure(t *testing.T) {
	kv := newFakeKV()
	kv.failErr = errors.New("connection refused")
	tracker := NewRedisTracker(kv, 0)
	ctx := context.Background()

	err := tracker.Set(ctx, "job-6", models.JobPending, time.Hour)
	assert.ErrorContains(t, err, "failed to set job status")

	_, found, err := tracker.Get(ctx, "job-6")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRedisTracker_CorruptErrorList(t *testing.T) {
	kv := newFakeKV()
	kv.values["import_errors:job-7"] = "not json"
	tracker := NewRedisTracker(kv, 0)

	_, _, err := tracker.GetErrors(context.Background(), "job-7")
	assert.ErrorContains(t, err, "failed to decode job errors")
}
