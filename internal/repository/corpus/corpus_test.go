package corpus

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func newsTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "economia", "noticias", "a.txt"),
		"2024-01-02;Sube el bitcoin;El precio del bitcoin sube;2024-01-03")
	writeFile(t, filepath.Join(root, "economia", "noticias", "b.txt"),
		"2024-01-04;Cae el bitcoin;El precio del bitcoin cae")
	writeFile(t, filepath.Join(root, "economia", "noticias", "enlaceen_lista.txt"),
		"http://a;http://b;http://c")
	writeFile(t, filepath.Join(root, "economia", "noticias", "notes.md"), "x;y;z")
	writeFile(t, filepath.Join(root, "politica", "noticias", "c.txt"), "solo;dos")
	writeFile(t, filepath.Join(root, "politica", "noticias", "d.txt"),
		"2024-02-01;Debate;Regulación del gobierno; con punto y coma")
	return root
}

func TestDir_Load(t *testing.T) {
	root := newsTree(t)

	docs, report, err := NewDir(root).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}
	for i, d := range docs {
		if d.ID() != i {
			t.Errorf("doc %d: expected dense id %d, got %d", i, i, d.ID())
		}
	}

	first := docs[0]
	if first.Title() != "Sube el bitcoin" || first.Body() != "El precio del bitcoin sube" {
		t.Errorf("unexpected first doc %q / %q", first.Title(), first.Body())
	}
	if first.Category() != "economia" || first.Date() != "2024-01-02" {
		t.Errorf("unexpected category/date %q/%q", first.Category(), first.Date())
	}
	if docs[2].Category() != "politica" {
		t.Errorf("expected politica, got %q", docs[2].Category())
	}
	if docs[2].Body() != "Regulación del gobierno" {
		t.Errorf("expected body truncated at third field, got %q", docs[2].Body())
	}

	if report.Loaded != 3 {
		t.Errorf("expected Loaded=3, got %d", report.Loaded)
	}
	if len(report.Skipped) != 1 || !strings.HasSuffix(report.Skipped[0].Path, "c.txt") {
		t.Errorf("expected c.txt skipped, got %+v", report.Skipped)
	}
}

func TestDir_LoadMissingRoot(t *testing.T) {
	_, _, err := NewDir(filepath.Join(t.TempDir(), "missing")).Load(context.Background())
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDir_LoadEmptyTree(t *testing.T) {
	docs, report, err := NewDir(t.TempDir()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 0 || report.Loaded != 0 {
		t.Errorf("expected empty corpus, got %d docs", len(docs))
	}
}

func TestDir_LoadCanceled(t *testing.T) {
	root := newsTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := NewDir(root).Load(ctx); err == nil {
		t.Fatal("expected error on canceled context")
	}
}

func TestCSV_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.csv")
	writeFile(t, path, strings.Join([]string{
		"titulo,contenido,categoria,fecha",
		`Sube,"El bitcoin sube, otra vez",economia,2024-01-01`,
		`Vacío,,economia,2024-01-02`,
		`Debate,Regulación,politica,`,
	}, "\n"))

	docs, report, err := NewCSV(path).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Body() != "El bitcoin sube, otra vez" || docs[0].Category() != "economia" {
		t.Errorf("unexpected first doc %q/%q", docs[0].Body(), docs[0].Category())
	}
	if docs[1].ID() != 1 || docs[1].Title() != "Debate" {
		t.Errorf("unexpected second doc id=%d title=%q", docs[1].ID(), docs[1].Title())
	}
	if len(report.Skipped) != 1 || report.Skipped[0].Reason != "empty body" {
		t.Errorf("expected one empty-body skip, got %+v", report.Skipped)
	}
}

func TestCSV_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "news.csv")
	writeFile(t, path, "titulo,fecha\nx,y\n")

	if _, _, err := NewCSV(path).Load(context.Background()); err == nil {
		t.Fatal("expected error for missing contenido column")
	}
}

func TestStatic_Load(t *testing.T) {
	docs, report, err := NewStatic(
		Article{Title: "a", Body: "uno"},
		Article{Title: "b", Body: "dos", Category: "x"},
	).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 || docs[1].ID() != 1 || docs[1].Category() != "x" {
		t.Errorf("unexpected docs %+v", docs)
	}
	if report.Loaded != 2 {
		t.Errorf("expected Loaded=2, got %d", report.Loaded)
	}
}

func TestExportSample(t *testing.T) {
	root := newsTree(t)
	var buf bytes.Buffer

	n, err := ExportSample(root, SampleOptions{PerCategory: 1}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "categoria,titulo,contenido,fecha" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if rows[1][0] != "economia" || rows[1][2] != "El precio del bitcoin sube;2024-01-03" {
		t.Errorf("unexpected economia row %v", rows[1])
	}
	// c.txt has too few fields, so d.txt is the politica sample.
	if rows[2][1] != "Debate" || rows[2][2] != "Regulación del gobierno; con punto y coma" {
		t.Errorf("unexpected politica row %v", rows[2])
	}
}

func TestExportSample_RoundTripsThroughCSVLoader(t *testing.T) {
	root := newsTree(t)
	out := filepath.Join(t.TempDir(), "sample.csv")
	f, err := os.Create(out)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ExportSample(root, SampleOptions{PerCategory: 5, Categories: []string{"economia"}}, f); err != nil {
		t.Fatalf("export: %v", err)
	}
	_ = f.Close()

	docs, _, err := NewCSV(out).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 || docs[1].Title() != "Cae el bitcoin" {
		t.Errorf("unexpected docs after round trip: %d", len(docs))
	}
}

func TestExportSample_InvalidLimit(t *testing.T) {
	if _, err := ExportSample(t.TempDir(), SampleOptions{}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for zero per-category")
	}
}
