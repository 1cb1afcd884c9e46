package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stwalsh4118/taxsale/api/internal/extract"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEmptyInput is returned when a file has no header row.
var ErrEmptyInput = errors.New("input has no header row")

// Row is one input record resolved onto canonical fields.
type Row struct {
	// Number locates the row in the source for error messages:
	// the physical line (CSV), the sheet row (XLSX) or the 1-based blob index.
	Number int
	Attrs  extract.Attributes
}

// Source yields rows in input order. Next returns io.EOF after the last row.
// Any other error is fatal for the whole batch.
type Source interface {
	Next() (Row, error)
	// Covers reports whether the input can supply field f at all.
	Covers(f extract.Field) bool
}

// csvSource reads delimited text.
type csvSource struct {
	r    *csv.Reader
	cols extract.ColumnMap
}

// NewCSVSource reads the header row of r and binds it against aliases.
// Input is decoded as UTF-8: a leading BOM is stripped and invalid byte
// sequences become U+FFFD.
func NewCSVSource(r io.Reader, aliases extract.AliasTable) (Source, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return &csvSource{r: cr, cols: aliases.Bind(header)}, nil
}

func (s *csvSource) Next() (Row, error) {
	record, err := s.r.Read()
	if errors.Is(err, io.EOF) {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, fmt.Errorf("malformed CSV: %w", err)
	}

	line, _ := s.r.FieldPos(0)
	return Row{Number: line, Attrs: s.cols.Extract(record)}, nil
}

func (s *csvSource) Covers(f extract.Field) bool {
	return s.cols.Covers(f)
}

// xlsxSource reads a single worksheet.
type xlsxSource struct {
	rows [][]string
	cols extract.ColumnMap
	next int
}

// NewXLSXSource loads sheet from the workbook in r, or the first sheet when
// sheet is empty. The first sheet row is the header.
func NewXLSXSource(r io.Reader, sheet string, aliases extract.AliasTable) (Source, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	return &xlsxSource{rows: rows, cols: aliases.Bind(rows[0]), next: 1}, nil
}

func (s *xlsxSource) Next() (Row, error) {
	if s.next >= len(s.rows) {
		return Row{}, io.EOF
	}
	i := s.next
	s.next++
	return Row{Number: i + 1, Attrs: s.cols.Extract(s.rows[i])}, nil
}

func (s *xlsxSource) Covers(f extract.Field) bool {
	return s.cols.Covers(f)
}

// Blob is one scraped free-text listing with optional auction context.
type Blob struct {
	Text        string  `json:"text" binding:"required"`
	AuctionName *string `json:"auction_name"`
	AuctionDate *string `json:"auction_date"`
	County      *string `json:"county"`
	// Source is the page the blob was scraped from.
	Source *string `json:"source" binding:"omitempty,url"`
}

// blobSource replays an in-memory blob collection.
type blobSource struct {
	blobs []Blob
	next  int
}

// NewBlobSource returns a Source over blobs. Each blob's text is carried as the
// raw_text field and parsed by the importer.
func NewBlobSource(blobs []Blob) Source {
	return &blobSource{blobs: blobs}
}

func (s *blobSource) Next() (Row, error) {
	if s.next >= len(s.blobs) {
		return Row{}, io.EOF
	}
	b := s.blobs[s.next]
	s.next++

	var attrs extract.Attributes
	attrs.Set(extract.FieldRawText, b.Text)
	set := func(f extract.Field, v *string) {
		if v != nil {
			attrs.Set(f, *v)
		}
	}
	set(extract.FieldAuctionName, b.AuctionName)
	set(extract.FieldAuctionDate, b.AuctionDate)
	set(extract.FieldCounty, b.County)
	set(extract.FieldInfoLink, b.Source)

	return Row{Number: s.next, Attrs: attrs}, nil
}

func (s *blobSource) Covers(f extract.Field) bool {
	switch f {
	case extract.FieldRawText, extract.FieldAuctionName, extract.FieldAuctionDate,
		extract.FieldCounty, extract.FieldInfoLink:
		return true
	}
	return false
}

// OpenSource picks a tabular source by file name: ".xlsx" workbooks go
// through excelize, everything else is read as CSV.
func OpenSource(name string, r io.Reader, aliases extract.AliasTable) (Source, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return NewXLSXSource(r, "", aliases)
	}
	return NewCSVSource(r, aliases)
}
