package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-redis/redis/v8"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// Key prefixes for job state in Redis.
const (
	statusKeyPrefix   = "import_status:"
	errorsKeyPrefix   = "import_errors:"
	progressKeyPrefix = "import_progress:"
)

// DefaultErrorLimit caps how many error entries are kept per job.
const DefaultErrorLimit = 100

// maxErrorLength caps a single stored error entry, in runes.
const maxErrorLength = 500

// KV is the subset of the Redis client the tracker needs.
type KV interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Tracker stores ephemeral import job state. Every write refreshes the key's
// TTL. A key that expired and a key that never existed both read as not found.
type Tracker interface {
	Set(ctx context.Context, jobID string, status models.JobStatus, ttl time.Duration) error
	Get(ctx context.Context, jobID string) (models.JobStatus, bool, error)
	SetErrors(ctx context.Context, jobID string, errs []string, ttl time.Duration) error
	GetErrors(ctx context.Context, jobID string) ([]string, bool, error)
	SetProgress(ctx context.Context, jobID string, p models.JobProgress, ttl time.Duration) error
	GetProgress(ctx context.Context, jobID string) (*models.JobProgress, bool, error)
}

// RedisTracker is a Tracker backed by Redis string keys.
type RedisTracker struct {
	kv         KV
	errorLimit int
}

// NewRedisTracker creates a RedisTracker. errorLimit <= 0 uses DefaultErrorLimit.
func NewRedisTracker(kv KV, errorLimit int) *RedisTracker {
	if errorLimit <= 0 {
		errorLimit = DefaultErrorLimit
	}
	return &RedisTracker{kv: kv, errorLimit: errorLimit}
}

// Set stores the job status.
func (t *RedisTracker) Set(ctx context.Context, jobID string, status models.JobStatus, ttl time.Duration) error {
	if err := t.kv.Set(ctx, statusKeyPrefix+jobID, string(status), ttl).Err(); err != nil {
		return fmt.Errorf("failed to set job status: %w", err)
	}
	return nil
}

// Get returns the job status, or found=false when the key is absent.
func (t *RedisTracker) Get(ctx context.Context, jobID string) (models.JobStatus, bool, error) {
	val, found, err := t.get(ctx, statusKeyPrefix+jobID)
	if err != nil || !found {
		return "", found, err
	}
	return models.JobStatus(val), true, nil
}

// SetErrors stores the job's error list as a JSON array, keeping at most
// errorLimit entries.
func (t *RedisTracker) SetErrors(ctx context.Context, jobID string, errs []string, ttl time.Duration) error {
	capped := make([]string, 0, min(len(errs), t.errorLimit))
	for i, e := range errs {
		if i == t.errorLimit {
			break
		}
		capped = append(capped, truncate(e, maxErrorLength))
	}

	data, err := json.Marshal(capped)
	if err != nil {
		return fmt.Errorf("failed to encode job errors: %w", err)
	}
	if err := t.kv.Set(ctx, errorsKeyPrefix+jobID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set job errors: %w", err)
	}
	return nil
}

// GetErrors returns the job's error list.
func (t *RedisTracker) GetErrors(ctx context.Context, jobID string) ([]string, bool, error) {
	val, found, err := t.get(ctx, errorsKeyPrefix+jobID)
	if err != nil || !found {
		return nil, found, err
	}

	var errs []string
	if err := json.Unmarshal([]byte(val), &errs); err != nil {
		return nil, false, fmt.Errorf("failed to decode job errors: %w", err)
	}
	return errs, true, nil
}

// SetProgress stores a progress snapshot. Its UpdatedAt is the job heartbeat.
func (t *RedisTracker) SetProgress(ctx context.Context, jobID string, p models.JobProgress, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode job progress: %w", err)
	}
	if err := t.kv.Set(ctx, progressKeyPrefix+jobID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set job progress: %w", err)
	}
	return nil
}

// GetProgress returns the last progress snapshot.
func (t *RedisTracker) GetProgress(ctx context.Context, jobID string) (*models.JobProgress, bool, error) {
	val, found, err := t.get(ctx, progressKeyPrefix+jobID)
	if err != nil || !found {
		return nil, found, err
	}

	var p models.JobProgress
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, false, fmt.Errorf("failed to decode job progress: %w", err)
	}
	return &p, true, nil
}

func (t *RedisTracker) get(ctx context.Context, key string) (string, bool, error) {
	val, err := t.kv.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return val, true, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
