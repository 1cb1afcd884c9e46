package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/taxsale/api/internal/config"
	"github.com/stwalsh4118/taxsale/api/internal/extract"
	"github.com/stwalsh4118/taxsale/api/internal/ingest"
	"github.com/stwalsh4118/taxsale/api/internal/jobs"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
	"golang.org/x/sync/semaphore"
)

// Service-level errors
var (
	ErrJobNotFound     = errors.New("import job not found")
	ErrUnsupportedKind = errors.New("unsupported import kind")
)

// ImportRequest describes one submitted batch. Tabular kinds carry the file
// bytes in Data; raw_text carries Blobs.
type ImportRequest struct {
	County *string
	Kind   models.JobKind
	Name   string
	Data   []byte
	Blobs  []ingest.Blob
}

// JobState is what a poller sees for a job.
type JobState struct {
	Progress *models.JobProgress
	JobID    string
	Status   models.JobStatus
	Errors   []string
	// Stalled is set when a pending job has not reported progress recently.
	Stalled bool
}

// Linker is notified after every job reaches a terminal state.
type Linker interface {
	Trigger()
}

// ImportService defines the interface for import job operations.
type ImportService interface {
	// Submit records the job as pending and processes it in the background.
	// Returns ErrUnsupportedKind for unknown kinds.
	Submit(ctx context.Context, req ImportRequest) (string, error)

	// Status returns the tracked state of a job.
	// Returns ErrJobNotFound if the job never existed or has expired.
	Status(ctx context.Context, jobID string) (*JobState, error)

	// Wait blocks until every submitted job has finished.
	Wait()
}

// importService is the concrete implementation of ImportService.
type importService struct {
	tracker  jobs.Tracker
	importer *ingest.Importer
	linker   Linker
	log      *logger.Logger
	sem      *semaphore.Weighted
	base     context.Context
	cfg      config.ImportConfig
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewImportService creates a new instance of ImportService. Jobs run on base,
// not on the submitting request's context; cancelling base interrupts them.
func NewImportService(
	base context.Context,
	tracker jobs.Tracker,
	store repository.ReconcileRepository,
	linker Linker,
	cfg config.ImportConfig,
	log *logger.Logger,
) ImportService {
	s := &importService{
		tracker: tracker,
		linker:  linker,
		log:     log,
		sem:     semaphore.NewWeighted(int64(max(cfg.MaxConcurrentJobs, 1))),
		base:    base,
		cfg:     cfg,
		now:     func() time.Time { return time.Now().UTC() },
	}
	sink := ingest.ProgressFunc(func(ctx context.Context, jobID string, p models.JobProgress) error {
		return s.tracker.SetProgress(ctx, jobID, p, s.cfg.StatusTTL)
	})
	s.importer = ingest.NewImporter(ingest.NewUpserter(store, cfg.MaxBidPercentage), sink, cfg.ProgressEvery, log)
	return s
}

// Submit validates the request, writes the pending state and starts the job.
func (s *importService) Submit(ctx context.Context, req ImportRequest) (string, error) {
	if !req.Kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
	}

	jobID := uuid.NewString()
	if err := s.tracker.Set(ctx, jobID, models.JobPending, s.cfg.StatusTTL); err != nil {
		s.log.Error("Failed to record pending job", err, map[string]interface{}{
			"job_id": jobID,
		})
		return "", fmt.Errorf("failed to record job: %w", err)
	}
	if err := s.tracker.SetProgress(ctx, jobID, models.JobProgress{UpdatedAt: s.now()}, s.cfg.StatusTTL); err != nil {
		s.log.Warn("Failed to record initial heartbeat", map[string]interface{}{
			"job_id": jobID,
			"error":  err.Error(),
		})
	}

	s.log.Info("Import job submitted", map[string]interface{}{
		"job_id": jobID,
		"kind":   req.Kind,
		"file":   req.Name,
		"bytes":  len(req.Data),
		"blobs":  len(req.Blobs),
	})

	s.wg.Add(1)
	go s.run(jobID, req)
	return jobID, nil
}

func (s *importService) run(jobID string, req ImportRequest) {
	defer s.wg.Done()

	var stats *ingest.Stats
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import panicked: %v", r)
		}
		s.finish(jobID, req.Kind, stats, err)
	}()

	if err = s.sem.Acquire(s.base, 1); err != nil {
		err = fmt.Errorf("import interrupted before start: %w", err)
		return
	}
	defer s.sem.Release(1)

	stats, err = s.process(jobID, req)
}

func (s *importService) process(jobID string, req ImportRequest) (*ingest.Stats, error) {
	var src ingest.Source
	if req.Kind == models.KindRawText {
		src = ingest.NewBlobSource(req.Blobs)
	} else {
		var err error
		src, err = ingest.OpenSource(req.Name, bytes.NewReader(req.Data), extract.AliasesFor(req.Kind))
		if err != nil {
			return nil, err
		}
	}

	job := ingest.Job{ID: jobID, Kind: req.Kind, Name: req.Name, County: req.County}
	return s.importer.Run(s.base, job, src)
}

// finish writes the terminal state once and signals the linker. Tracker writes
// outlive cancellation of the base context.
func (s *importService) finish(jobID string, kind models.JobKind, stats *ingest.Stats, runErr error) {
	ctx := context.WithoutCancel(s.base)
	log := s.log.WithJob(jobID, string(kind))

	status := models.JobCriticalFailure
	var errs []string
	if runErr != nil {
		errs = []string{runErr.Error()}
		log.Error("Import failed", runErr, nil)
	} else {
		status = stats.Status()
		errs = stats.Errors
	}

	if stats != nil {
		if err := s.tracker.SetProgress(ctx, jobID, stats.Progress(s.now()), s.cfg.StatusTTL); err != nil {
			log.Warn("Failed to record final progress", map[string]interface{}{"error": err.Error()})
		}
	}
	// Errors land before the terminal status so a poller never sees one without the other.
	if err := s.tracker.SetErrors(ctx, jobID, errs, s.cfg.StatusTTL); err != nil {
		log.Error("Failed to record job errors", err, nil)
	}
	if err := s.tracker.Set(ctx, jobID, status, s.cfg.StatusTTL); err != nil {
		log.Error("Failed to record job status", err, map[string]interface{}{
			"status": status,
		})
	}

	log.Info("Import job finished", map[string]interface{}{
		"status": status,
		"errors": len(errs),
	})

	if s.linker != nil {
		s.linker.Trigger()
	}
}

// Status reads the job state from the tracker.
func (s *importService) Status(ctx context.Context, jobID string) (*JobState, error) {
	status, found, err := s.tracker.Get(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read job status: %w", err)
	}
	if !found {
		return nil, ErrJobNotFound
	}

	state := &JobState{JobID: jobID, Status: status}

	errs, found, err := s.tracker.GetErrors(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read job errors: %w", err)
	}
	if found {
		state.Errors = errs
	}

	progress, found, err := s.tracker.GetProgress(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read job progress: %w", err)
	}
	if found {
		state.Progress = progress
		state.Stalled = status == models.JobPending &&
			s.cfg.StallAfter > 0 &&
			s.now().Sub(progress.UpdatedAt) > s.cfg.StallAfter
	}

	return state, nil
}

// Wait blocks until all submitted jobs have finished.
func (s *importService) Wait() {
	s.wg.Wait()
}
