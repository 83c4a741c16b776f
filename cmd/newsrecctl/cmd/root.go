// Package cmd provides the newsrecctl commands.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsrec/internal/app"
	"github.com/kailas-cloud/newsrec/internal/config"
	"github.com/kailas-cloud/newsrec/internal/domain/strategy"
	logpkg "github.com/kailas-cloud/newsrec/internal/logger"
	"github.com/kailas-cloud/newsrec/internal/usecase/recommend"
	"github.com/kailas-cloud/newsrec/internal/version"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configEnv string
	corpusDir string
	corpusCSV string
	language  string
	strategy  string
	topN      int
	format    string
	logLevel  string
}

// NewRootCmd creates the root command for newsrecctl.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "newsrecctl",
		Short: "Recommend related news articles from a local corpus",
		Long: `newsrecctl ranks a news corpus by content similarity to a free-text
query or to one of its own articles.

The corpus is either a directory tree (<root>/<category>/noticias/*.txt,
each file "date;title;body") or a CSV with categoria,titulo,contenido,fecha
columns. Two strategies are available: lexical (TF-IDF) and semantic
(sentence embeddings from an OpenAI-compatible server, see --config-env).

Examples:
  newsrecctl query --corpus ./news "subida del bitcoin"
  newsrecctl similar --csv sample.csv 12 --top-n 3
  newsrecctl compare --corpus ./news --query "elecciones generales"`,
		Version:       version.Version,
		SilenceUsage: true,
	}
	cmd.SetVersionTemplate("newsrecctl version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configEnv, "config-env", "", "Load config/<env>.yaml before applying flags")
	pf.StringVar(&opts.corpusDir, "corpus", "", "Corpus root directory")
	pf.StringVar(&opts.corpusCSV, "csv", "", "Corpus CSV file")
	pf.StringVar(&opts.language, "language", "", "Stop-word language: es, en, none (default es)")
	pf.StringVarP(&opts.strategy, "strategy", "s", string(strategy.Lexical), "Ranking strategy: lexical, semantic")
	pf.IntVarP(&opts.topN, "top-n", "n", 0, "Number of results (default from config, 5)")
	pf.StringVarP(&opts.format, "format", "f", formatText, "Output format: text, json")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level on stderr (default warn)")
	cmd.MarkFlagsMutuallyExclusive("corpus", "csv")

	cmd.AddCommand(newQueryCmd(opts))
	cmd.AddCommand(newSimilarCmd(opts))
	cmd.AddCommand(newCompareCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newExportSampleCmd(opts))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background()) //nolint:wrapcheck // cobra prints the error
}

// config merges the optional config file with the command-line flags.
func (o *rootOptions) config() (config.Config, error) {
	var cfg config.Config
	if o.configEnv != "" {
		loaded, err := config.Load(o.configEnv)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if o.corpusDir != "" {
		cfg.Corpus.Dir, cfg.Corpus.CSV = o.corpusDir, ""
	}
	if o.corpusCSV != "" {
		cfg.Corpus.CSV, cfg.Corpus.Dir = o.corpusCSV, ""
	}
	if o.language != "" {
		cfg.Corpus.Language = o.language
	}
	cfg.ApplyDefaults()

	if cfg.Corpus.Dir == "" && cfg.Corpus.CSV == "" {
		return config.Config{}, errors.New("a corpus is required: pass --corpus or --csv")
	}
	switch o.format {
	case formatText, formatJSON:
	default:
		return config.Config{}, fmt.Errorf("unknown format %q", o.format)
	}
	return cfg, nil
}

// engine builds the recommendation engine in the foreground.
func (o *rootOptions) engine(ctx context.Context) (*recommend.Engine, config.Config, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, config.Config{}, err
	}

	logger, err := logpkg.NewCLILogger(o.logLevel)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	emb, err := app.NewEmbedders(cfg, nil, nil, logger)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("embedders: %w", err)
	}

	handle := recommend.NewHandle(app.EngineBuilder(cfg, emb, logger))
	e, err := handle.Get(ctx)
	if err != nil {
		return nil, config.Config{}, err //nolint:wrapcheck // already wrapped by the handle
	}
	logger.Debug("engine ready", zap.Int("documents", e.Size()))
	return e, cfg, nil
}

// query resolves the strategy and top-n flags.
func (o *rootOptions) query(cfg config.Config) (strategy.Strategy, int, error) {
	st, err := strategy.Parse(o.strategy)
	if err != nil {
		return "", 0, err //nolint:wrapcheck // message is user-facing
	}
	n := o.topN
	if n == 0 {
		n = cfg.Recommend.DefaultTopN
	}
	if n < 1 {
		return "", 0, fmt.Errorf("--top-n must be at least 1, got %d", n)
	}
	return st, n, nil
}
