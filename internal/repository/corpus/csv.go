package corpus

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

// CSV column names.
const (
	ColumnCategory = "categoria"
	ColumnTitle    = "titulo"
	ColumnBody     = "contenido"
	ColumnDate     = "fecha"
)

var csvHeader = []string{ColumnCategory, ColumnTitle, ColumnBody, ColumnDate}

// CSV loads articles from a single CSV file with a categoria,titulo,contenido,fecha header.
// Columns may appear in any order; rows without a body are skipped.
type CSV struct {
	path string
}

// NewCSV creates a CSV loader.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Load parses the file in row order.
func (c *CSV) Load(ctx context.Context) ([]domdoc.Document, Report, error) {
	f, err := os.Open(filepath.Clean(c.path))
	if err != nil {
		return nil, Report{}, fmt.Errorf("open corpus csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	recs, skips, err := c.parse(ctx, f)
	if err != nil {
		return nil, Report{}, err
	}
	docs, err := assignIDs(recs)
	if err != nil {
		return nil, Report{}, err
	}
	return docs, Report{Source: c.path, Loaded: len(docs), Skipped: skips}, nil
}

func (c *CSV) parse(ctx context.Context, r io.Reader) ([]record, []Skip, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		recs  []record
		skips []Skip
	)
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		source := fmt.Sprintf("%s:%d", c.path, line)
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skips = append(skips, Skip{Path: source, Reason: perr.Err.Error()})
				continue
			}
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) < len(header) {
			skips = append(skips, Skip{Path: source, Reason: fmt.Sprintf("expected %d fields, got %d", len(header), len(row))})
			continue
		}
		body := strings.TrimSpace(row[cols[ColumnBody]])
		if body == "" {
			skips = append(skips, Skip{Path: source, Reason: "empty body"})
			continue
		}
		recs = append(recs, record{
			title:    strings.TrimSpace(row[cols[ColumnTitle]]),
			body:     body,
			category: strings.TrimSpace(row[cols[ColumnCategory]]),
			date:     optional(row, cols, ColumnDate),
			source:   source,
		})
	}
	return recs, skips, nil
}

func columnIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))] = i
	}
	for _, required := range []string{ColumnCategory, ColumnTitle, ColumnBody} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv header missing column %q", required)
		}
	}
	return cols, nil
}

func optional(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
