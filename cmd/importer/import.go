package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxsale/api/internal/extract"
	"github.com/stwalsh4118/taxsale/api/internal/ingest"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/models"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
	"golang.org/x/sync/errgroup"
)

type importOptions struct {
	kind        string
	county      string
	concurrency int
	dryRun      bool
	noLink      bool
}

func newImportCmd() *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import FILE...",
		Short: "Import CSV/XLSX exports or JSON blob files",
		Long: `Import one or more files. Each file is its own job; files are processed
concurrently and rows within a file in order.

Kinds:
  properties  property/auction exports (.csv or .xlsx)
  auctions    county auction calendars (.csv or .xlsx)
  raw_text    JSON arrays of {"text": ..., "auction_name": ..., ...} blobs`,
		Example: `  importer import --kind properties brevard_co_20260209.csv
  importer import --kind auctions --county "Adams County" calendar.xlsx
  importer import --kind properties --dry-run exports/*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := models.JobKind(opts.kind)
			if !kind.Valid() {
				return fmt.Errorf("unsupported kind %q", opts.kind)
			}

			e, err := openEnv(cmd.Context(), opts.dryRun)
			if err != nil {
				return err
			}
			defer e.close()

			if err := runImport(cmd.Context(), e.store, e.log, e.cfg.Import.MaxBidPercentage, opts, args, cmd.OutOrStdout()); err != nil {
				return err
			}
			if opts.noLink {
				return nil
			}
			linked, err := e.store.LinkAuctionHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to link auction history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "linked %d auction history rows\n", linked)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", string(models.KindProperties), "input kind: properties, auctions or raw_text")
	cmd.Flags().StringVar(&opts.county, "county", "", "county applied to rows without one (default: inferred from file name)")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "c", 4, "files imported at once")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "import into memory only and report what would happen")
	cmd.Flags().BoolVar(&opts.noLink, "no-link", false, "skip the linkage run after importing")

	return cmd
}

// runImport imports every file and writes one summary line per file. A file
// that fails outright is reported and does not stop the others; the returned
// error says how many failed.
func runImport(
	ctx context.Context,
	store repository.ReconcileRepository,
	log *logger.Logger,
	maxBidPct float64,
	opts importOptions,
	files []string,
	out io.Writer,
) error {
	im := ingest.NewImporter(ingest.NewUpserter(store, maxBidPct), nil, ingest.DefaultProgressEvery, log)

	var county *string
	if opts.county != "" {
		county = &opts.county
	}

	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.concurrency, 1))
	for _, path := range files {
		g.Go(func() error {
			job := ingest.Job{
				ID:     uuid.NewString(),
				Kind:   models.JobKind(opts.kind),
				Name:   filepath.Base(path),
				County: county,
			}
			stats, err := importFile(gctx, im, job, path)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				fmt.Fprintf(out, "%s: %s: %v\n", path, models.JobCriticalFailure, err)
				return nil
			}
			fmt.Fprintf(out, "%s: %s (rows=%d succeeded=%d inserted=%d updated=%d failed=%d skipped=%d warnings=%d)\n",
				path, stats.Status(), stats.Total, stats.Succeeded, stats.Inserted, stats.Updated,
				stats.Failed, stats.Skipped, stats.Warnings)
			for _, e := range stats.Errors {
				fmt.Fprintf(out, "  %s\n", e)
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func importFile(ctx context.Context, im *ingest.Importer, job ingest.Job, path string) (*ingest.Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src ingest.Source
	if job.Kind == models.KindRawText {
		var blobs []ingest.Blob
		if err := json.NewDecoder(f).Decode(&blobs); err != nil {
			return nil, fmt.Errorf("failed to decode blobs: %w", err)
		}
		src = ingest.NewBlobSource(blobs)
	} else {
		src, err = ingest.OpenSource(path, f, extract.AliasesFor(job.Kind))
		if err != nil {
			return nil, err
		}
	}

	return im.Run(ctx, job, src)
}
