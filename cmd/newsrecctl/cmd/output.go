package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/repository/corpus"
)

type resultView struct {
	ID         int     `json:"id"`
	Title      string  `json:"title"`
	Category   string  `json:"category"`
	Similarity float64 `json:"similarity"`
	Preview    string  `json:"preview"`
}

type documentView struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type printer struct {
	out    io.Writer
	errOut io.Writer
	format string
}

func newPrinter(cmd *cobra.Command, format string) *printer {
	return &printer{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), format: format}
}

func (p *printer) results(st strategy.Strategy, results []recommendation.Result) error {
	views := toViews(results)
	if p.format == formatJSON {
		return p.json(struct {
			Strategy strategy.Strategy `json:"strategy"`
			Results  []resultView      `json:"results"`
		}{st, views})
	}
	return p.table(views)
}

func (p *printer) comparison(cmp recommendation.Comparison) error {
	lexical, semantic := toViews(cmp.Lexical), toViews(cmp.Semantic)
	if p.format == formatJSON {
		return p.json(struct {
			Lexical  []resultView `json:"lexical"`
			Semantic []resultView `json:"semantic"`
		}{lexical, semantic})
	}

	if _, err := fmt.Fprintln(p.out, "== lexical"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := p.table(lexical); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(p.out, "\n== semantic"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return p.table(semantic)
}

func (p *printer) documents(docs []domdoc.Document, skipped []corpus.Skip) error {
	views := make([]documentView, len(docs))
	for i := range docs {
		views[i] = documentView{
			ID:       docs[i].ID(),
			Title:    docs[i].Title(),
			Category: docs[i].Category(),
			Date:     docs[i].Date(),
		}
	}
	if p.format == formatJSON {
		return p.json(struct {
			Documents []documentView `json:"documents"`
			Skipped   int            `json:"skipped"`
		}{views, len(skipped)})
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tTITLE")
	for _, v := range views {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.ID, v.Date, v.Category, v.Title)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if len(skipped) > 0 {
		_, _ = fmt.Fprintf(p.errOut, "%d source(s) skipped while loading\n", len(skipped))
	}
	return nil
}

func (p *printer) table(views []resultView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(p.out, "(no results)")
		return err //nolint:wrapcheck // terminal write
	}
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tID\tSIMILARITY\tCATEGORY\tTITLE")
	for i, v := range views {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%.4f\t%s\t%s\n", i+1, v.ID, v.Similarity, v.Category, v.Title)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func toViews(results []recommendation.Result) []resultView {
	views := make([]resultView, len(results))
	for i := range results {
		views[i] = resultView{
			ID:         results[i].ID(),
			Title:      results[i].Title(),
			Category:   results[i].Category(),
			Similarity: results[i].Similarity(),
			Preview:    results[i].Preview(),
		}
	}
	return views
}
