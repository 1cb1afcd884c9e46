package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/stwalsh4118/taxsale/api/internal/extract"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/models"
)

// DefaultProgressEvery is how many rows pass between progress reports.
const DefaultProgressEvery = 25

// ErrMissingKeyColumn means no column can supply the natural key, so every
// row would be skipped. The batch is rejected instead.
var ErrMissingKeyColumn = errors.New("input has no natural key column")

// Job identifies one import run.
type Job struct {
	ID   string
	Kind models.JobKind
	// Name is the uploaded file name, used to infer the county.
	Name string
	// County is applied to rows that do not carry their own county.
	County *string
}

// RowKind classifies how a row ended.
type RowKind int

const (
	RowSuccess RowKind = iota
	RowFailed
	RowSkipped
)

func (k RowKind) String() string {
	switch k {
	case RowSuccess:
		return "success"
	case RowFailed:
		return "error"
	case RowSkipped:
		return "skip"
	}
	return "unknown"
}

// RowResult is the typed outcome of one row.
type RowResult struct {
	Number   int
	Kind     RowKind
	Inserted bool
	Warnings []string
	// Message is the client-safe error text, set for RowFailed.
	Message string
	// Err is the underlying error, for logs only.
	Err error
}

// Stats accumulates row outcomes for a job.
type Stats struct {
	Total     int
	Succeeded int
	Inserted  int
	Updated   int
	Failed    int
	Skipped   int
	Warnings  int
	// Errors holds one "Row N: message" entry per failed row.
	Errors []string
}

func (s *Stats) record(r RowResult) {
	s.Total++
	s.Warnings += len(r.Warnings)
	switch r.Kind {
	case RowSuccess:
		s.Succeeded++
		if r.Inserted {
			s.Inserted++
		} else {
			s.Updated++
		}
	case RowFailed:
		s.Failed++
		s.Errors = append(s.Errors, fmt.Sprintf("Row %d: %s", r.Number, r.Message))
	case RowSkipped:
		s.Skipped++
	}
}

// Status is the terminal job status these stats imply for a batch that
// completed without a fatal error.
func (s *Stats) Status() models.JobStatus {
	if s.Failed > 0 {
		return models.JobPartialSuccess
	}
	return models.JobSuccess
}

// Progress snapshots the stats.
func (s *Stats) Progress(at time.Time) models.JobProgress {
	return models.JobProgress{
		UpdatedAt: at,
		Total:     s.Total,
		Succeeded: s.Succeeded,
		Inserted:  s.Inserted,
		Updated:   s.Updated,
		Failed:    s.Failed,
		Skipped:   s.Skipped,
		Warnings:  s.Warnings,
	}
}

// ProgressSink receives periodic progress snapshots. Implementations must not
// block for long; a failed report never fails the batch.
type ProgressSink interface {
	Progress(ctx context.Context, jobID string, p models.JobProgress) error
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(ctx context.Context, jobID string, p models.JobProgress) error

// Progress calls f.
func (f ProgressFunc) Progress(ctx context.Context, jobID string, p models.JobProgress) error {
	return f(ctx, jobID, p)
}

// Importer drives rows from a Source through extraction, normalization and the
// Upserter. Rows are processed strictly in order.
type Importer struct {
	upserter      *Upserter
	log           *logger.Logger
	sink          ProgressSink
	progressEvery int
	now           func() time.Time
}

// NewImporter creates an Importer. sink may be nil.
func NewImporter(upserter *Upserter, sink ProgressSink, progressEvery int, log *logger.Logger) *Importer {
	if progressEvery < 1 {
		progressEvery = DefaultProgressEvery
	}
	return &Importer{
		upserter:      upserter,
		log:           log,
		sink:          sink,
		progressEvery: progressEvery,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Run imports every row of src. Row-level failures are recorded in the
// returned Stats and never stop the batch. A non-nil error is batch-fatal;
// rows committed before it remain committed.
func (im *Importer) Run(ctx context.Context, job Job, src Source) (*Stats, error) {
	log := im.log.WithJob(job.ID, string(job.Kind))
	stats := &Stats{}

	if err := checkKeyColumns(job.Kind, src); err != nil {
		return stats, err
	}

	county := job.County
	if county == nil && job.Name != "" {
		county = extract.CountyFromFilename(job.Name)
	}

	log.Info("Import started", map[string]interface{}{
		"file":   job.Name,
		"county": county,
	})

	for {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("import interrupted after %d rows: %w", stats.Total, err)
		}

		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		res := im.processRow(ctx, job.Kind, county, row)
		stats.record(res)
		im.logRow(log, res)

		if stats.Total%im.progressEvery == 0 {
			im.report(ctx, log, job.ID, stats)
		}
	}

	im.report(ctx, log, job.ID, stats)
	log.Info("Import finished", map[string]interface{}{
		"total":     stats.Total,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"skipped":   stats.Skipped,
		"warnings":  stats.Warnings,
	})
	return stats, nil
}

func checkKeyColumns(kind models.JobKind, src Source) error {
	switch kind {
	case models.KindAuctions:
		if !src.Covers(extract.FieldAuctionName) || !src.Covers(extract.FieldAuctionDate) {
			return fmt.Errorf("%w: auction calendars need name and auction date columns", ErrMissingKeyColumn)
		}
	case models.KindProperties, models.KindRawText:
		if !src.Covers(extract.FieldParcelID) && !src.Covers(extract.FieldRawText) {
			return fmt.Errorf("%w: expected a parcel id or raw_text column", ErrMissingKeyColumn)
		}
	default:
		return fmt.Errorf("unsupported import kind %q", kind)
	}
	return nil
}

func (im *Importer) processRow(ctx context.Context, kind models.JobKind, county *string, row Row) RowResult {
	res := RowResult{Number: row.Number}
	attrs := row.Attrs

	if county != nil && !attrs.Has(extract.FieldCounty) {
		attrs.Set(extract.FieldCounty, *county)
	}

	var out Outcome
	var err error
	if kind == models.KindAuctions {
		ev, warnings, buildErr := extract.BuildEvent(attrs)
		res.Warnings = warnings
		if buildErr != nil {
			return classify(res, buildErr)
		}
		out, err = im.upserter.ApplyEvent(ctx, &ev)
	} else {
		if raw, ok := attrs.Get(extract.FieldRawText); ok {
			parsed := extract.FromText(raw)
			attrs.Fill(&parsed)
		}
		rec, warnings, buildErr := extract.Build(attrs)
		res.Warnings = warnings
		if buildErr != nil {
			return classify(res, buildErr)
		}
		out, err = im.upserter.Apply(ctx, &rec)
	}

	if err != nil {
		res.Kind = RowFailed
		res.Message = "failed to save record"
		res.Err = err
		return res
	}
	res.Kind = RowSuccess
	res.Inserted = out.Inserted
	return res
}

func classify(res RowResult, err error) RowResult {
	if errors.Is(err, extract.ErrMissingKey) {
		res.Kind = RowSkipped
		return res
	}
	res.Kind = RowFailed
	res.Message = err.Error()
	res.Err = err
	return res
}

func (im *Importer) logRow(log *logger.Logger, res RowResult) {
	fields := map[string]interface{}{
		"row":    res.Number,
		"result": res.Kind.String(),
	}
	if len(res.Warnings) > 0 {
		fields["warnings"] = res.Warnings
		log.Warn("Row degraded", fields)
	}
	switch res.Kind {
	case RowFailed:
		log.Error("Row failed", res.Err, fields)
	case RowSkipped:
		log.Debug("Row skipped: natural key absent", fields)
	}
}

func (im *Importer) report(ctx context.Context, log *logger.Logger, jobID string, stats *Stats) {
	if im.sink == nil {
		return
	}
	if err := im.sink.Progress(ctx, jobID, stats.Progress(im.now())); err != nil {
		log.Warn("Failed to report progress", map[string]interface{}{
			"error": err.Error(),
			"total": stats.Total,
		})
	}
}
