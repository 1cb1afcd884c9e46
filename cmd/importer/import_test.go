package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunImport_MultipleFiles(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "adams_co_20260209.csv", "Parcel ID,City\nA-1,Brighton\nA-2,Brighton\n")
	b := writeFile(t, dir, "b.csv", "Parcel ID,Status\nB-1,sold\nB-2,haunted\n")

	store := repository.NewMemoryStore()
	var out bytes.Buffer
	opts := importOptions{kind: "properties", concurrency: 2}

	err := runImport(context.Background(), store, logger.New("test"), 0.7, opts, []string{a, b}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), a+": success (rows=2 succeeded=2")
	assert.Contains(t, out.String(), b+": partial_success (rows=2 succeeded=1")
	assert.Contains(t, out.String(), "  Row 3: ")

	view, err := store.FindByParcelID(context.Background(), "A-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Adams County", *view.Property.County)
}

func TestRunImport_FailedFileDoesNotStopOthers(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.csv", "Parcel ID\nG-1\n")
	missing := filepath.Join(dir, "missing.csv")

	store := repository.NewMemoryStore()
	var out bytes.Buffer
	opts := importOptions{kind: "properties", concurrency: 1}

	err := runImport(context.Background(), store, logger.New("test"), 0.7, opts, []string{missing, good}, &out)
	assert.EqualError(t, err, "1 of 2 files failed")
	assert.Contains(t, out.String(), missing+": critical_failure")

	properties, _, _ := store.Counts()
	assert.Equal(t, 1, properties)
}

func TestRunImport_RawTextBlobs(t *testing.T) {
	dir := t.TempDir()
	blobs := writeFile(t, dir, "blobs.json", `[{"text":"Parcel ID: R-1\nOpening Bid: $500.00","auction_name":"Fall Sale"}]`)

	store := repository.NewMemoryStore()
	var out bytes.Buffer
	opts := importOptions{kind: "raw_text", county: "Weld County", concurrency: 1}

	require.NoError(t, runImport(context.Background(), store, logger.New("test"), 0.7, opts, []string{blobs}, &out))

	view, err := store.FindByParcelID(context.Background(), "R-1")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "Weld County", *view.Property.County)
	require.Len(t, view.History, 1)
	assert.Equal(t, 500.0, *view.History[0].OpeningBid)
}

func TestOpenEnv_DryRunNeedsNoDatabasePassword(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")

	e, err := openEnv(context.Background(), true)
	require.NoError(t, err)
	defer e.close()

	assert.IsType(t, &repository.MemoryStore{}, e.store)
}
