package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/newsrec/internal/domain/recommendation"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	"github.com/kailas-cloud/newsrec/internal/usecase/recommend"
)

func newQueryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "query <text>",
		Short: "Recommend articles for a free-text query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cfg, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			st, n, err := opts.query(cfg)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			results, err := e.RecommendByText(cmd.Context(), text, st, n)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			warnUnavailable(cmd, e, st)
			return newPrinter(cmd, opts.format).results(st, results)
		},
	}
}

func newSimilarCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "similar <id>",
		Short: "Recommend articles similar to a corpus article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("document id must be an integer, got %q", args[0])
			}
			e, cfg, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			st, n, err := opts.query(cfg)
			if err != nil {
				return err
			}

			results, err := e.RecommendByDocument(cmd.Context(), id, st, n)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			warnUnavailable(cmd, e, st)
			return newPrinter(cmd, opts.format).results(st, results)
		},
	}
}

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		query string
		id    int
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rank the same request under both strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			byQuery := cmd.Flags().Changed("query")
			if byQuery == cmd.Flags().Changed("id") {
				return fmt.Errorf("exactly one of --query and --id is required")
			}
			e, cfg, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}
			_, n, err := opts.query(cfg)
			if err != nil {
				return err
			}

			var cmp recommendation.Comparison
			if byQuery {
				cmp, err = e.CompareText(cmd.Context(), query, n)
			} else {
				cmp, err = e.CompareDocument(cmd.Context(), id, n)
			}
			if err != nil {
				return fmt.Errorf("compare: %w", err)
			}
			warnUnavailable(cmd, e, strategy.Semantic)
			return newPrinter(cmd, opts.format).comparison(cmp)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text query")
	cmd.Flags().IntVar(&id, "id", 0, "Reference document id")

	return cmd
}

// warnUnavailable notes on stderr that a strategy returned nothing because it was never fitted.
func warnUnavailable(cmd *cobra.Command, e *recommend.Engine, st strategy.Strategy) {
	caps := e.Capabilities()
	if caps.Has(st) {
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s strategy unavailable: %s\n", st, caps.SemanticReason)
}
