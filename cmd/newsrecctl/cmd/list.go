package cmd

import (
	"github.com/spf13/cobra"

	domdoc "github.com/kailas-cloud/newsrec/internal/domain/document"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List corpus articles",
		Long: `List corpus articles with their ids.

--filter keeps articles whose title or body contains the text,
ignoring case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, _, err := opts.engine(cmd.Context())
			if err != nil {
				return err
			}

			var docs []domdoc.Document
			if filter != "" {
				docs = e.Filter(filter)
			} else {
				docs = e.Documents()
			}
			return newPrinter(cmd, opts.format).documents(docs, e.LoadReport().Skipped)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring of title or body")

	return cmd
}
