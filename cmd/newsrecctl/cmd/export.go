package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/repository/corpus"
)

func newExportSampleCmd(opts *rootOptions) *cobra.Command {
	var (
		perCategory int
		categories  []string
		out         string
	)

	cmd := &cobra.Command{
		Use:   "export-sample",
		Short: "Write the first N articles per category of a corpus tree to CSV",
		Long: `Write the first N articles of every category of a corpus directory to a
CSV file with the columns categoria,titulo,contenido,fecha. The result can be
used as a --csv corpus.

Examples:
  newsrecctl export-sample --corpus ./news --per-category 100 --out sample.csv
  newsrecctl export-sample --corpus ./news --categories economia,politica`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.corpusDir == "" {
				return errors.New("export-sample reads a corpus directory: pass --corpus")
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(filepath.Clean(out))
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			n, err := corpus.ExportSample(opts.corpusDir, corpus.SampleOptions{
				PerCategory: perCategory,
				Categories:  categories,
			}, w)
			if err != nil {
				return fmt.Errorf("export sample: %w", err)
			}
			if out != "-" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d articles to %s\n", n, out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&perCategory, "per-category", 100, "Articles taken from each category")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Categories to export (default all)")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Output file, - for stdout")

	return cmd
}
