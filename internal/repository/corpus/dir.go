package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

const (
	fieldSeparator = ";"
	minFields      = 3
	// controlMarker tags scraper link-list files that are not articles.
	controlMarker = "enlaceen"
	readWorkers   = 8
)

// Dir loads articles from a tree laid out as <root>/<category>/<folder>/<file>.txt.
// Each file holds "date;title;body[;extracted_at]".
type Dir struct {
	root string
}

// NewDir creates a directory loader rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Load walks the tree in lexical order and parses every article file.
// Files that cannot be read or parsed are skipped and listed in the report.
func (d *Dir) Load(ctx context.Context) ([]domdoc.Document, Report, error) {
	paths, err := d.articlePaths()
	if err != nil {
		return nil, Report{}, err
	}

	type parsed struct {
		rec  record
		skip string
	}
	results := make([]parsed, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readWorkers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation
			}
			rec, reason := d.parseFile(path)
			results[i] = parsed{rec: rec, skip: reason}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Report{}, fmt.Errorf("load corpus %s: %w", d.root, err)
	}

	report := Report{Source: d.root}
	recs := make([]record, 0, len(results))
	for i, r := range results {
		if r.skip != "" {
			report.Skipped = append(report.Skipped, Skip{Path: paths[i], Reason: r.skip})
			continue
		}
		recs = append(recs, r.rec)
	}

	docs, err := assignIDs(recs)
	if err != nil {
		return nil, Report{}, err
	}
	report.Loaded = len(docs)
	return docs, report, nil
}

func (d *Dir) articlePaths() ([]string, error) {
	info, err := os.Stat(d.root)
	if err != nil {
		return nil, fmt.Errorf("corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("corpus root %s is not a directory", d.root)
	}

	var paths []string
	err = filepath.WalkDir(d.root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !isArticleFile(entry.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", d.root, err)
	}
	return paths, nil
}

func isArticleFile(name string) bool {
	return strings.HasSuffix(name, ".txt") && !strings.Contains(name, controlMarker)
}

// parseFile returns the record or a non-empty skip reason.
func (d *Dir) parseFile(path string) (record, string) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return record{}, "read: " + err.Error()
	}
	date, title, body, ok := splitArticle(string(data))
	if !ok {
		return record{}, fmt.Sprintf("expected at least %d %q-separated fields", minFields, fieldSeparator)
	}
	return record{
		title:    title,
		body:     body,
		category: categoryOf(path),
		date:     date,
		source:   path,
	}, ""
}

// splitArticle parses "date;title;body[;...]"; fields past the body are ignored.
func splitArticle(content string) (date, title, body string, ok bool) {
	parts := strings.Split(strings.TrimSpace(content), fieldSeparator)
	if len(parts) < minFields {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// categoryOf returns the grandparent directory name: <category>/<folder>/<file>.
func categoryOf(path string) string {
	return filepath.Base(filepath.Dir(filepath.Dir(path)))
}
