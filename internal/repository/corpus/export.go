package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// articleFolder is the per-category subdirectory holding article files.
const articleFolder = "noticias"

// SampleOptions controls ExportSample.
type SampleOptions struct {
	// PerCategory caps how many articles are taken from each category.
	PerCategory int
	// Categories restricts the export; empty means every category under root.
	Categories []string
}

// ExportSample writes up to PerCategory articles from each category folder as CSV.
// Fields after the title are joined back into the body. Returns the number of rows written.
func ExportSample(root string, opts SampleOptions, w io.Writer) (int, error) {
	if opts.PerCategory < 1 {
		return 0, fmt.Errorf("per-category must be positive, got %d", opts.PerCategory)
	}
	categories := opts.Categories
	if len(categories) == 0 {
		var err error
		if categories, err = listCategories(root); err != nil {
			return 0, err
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	written := 0
	for _, category := range categories {
		n, err := exportCategory(cw, root, category, opts.PerCategory)
		if err != nil {
			return written, err
		}
		written += n
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return written, fmt.Errorf("flush csv: %w", err)
	}
	return written, nil
}

func listCategories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

func exportCategory(cw *csv.Writer, root, category string, limit int) (int, error) {
	dir := filepath.Join(root, category, articleFolder)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read category %s: %w", category, err)
	}

	written := 0
	for _, e := range entries {
		if written >= limit {
			break
		}
		if e.IsDir() || !isArticleFile(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		line, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
		parts := strings.Split(line, fieldSeparator)
		if len(parts) < minFields {
			continue
		}
		row := []string{category, parts[1], strings.Join(parts[2:], fieldSeparator), parts[0]}
		if err := cw.Write(row); err != nil {
			return written, fmt.Errorf("write row: %w", err)
		}
		written++
	}
	return written, nil
}
