// Package commands implements the semlabel CLI.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/config"
	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
	"github.com/arliden/semlabel/internal/logging"
	"github.com/arliden/semlabel/internal/output"
	"github.com/arliden/semlabel/internal/output/async"
	"github.com/arliden/semlabel/internal/output/file"
	"github.com/arliden/semlabel/internal/output/multi"
	"github.com/arliden/semlabel/internal/output/stdout"
	"github.com/arliden/semlabel/internal/output/webhook"
	"github.com/arliden/semlabel/internal/recall"
	"github.com/arliden/semlabel/internal/vote"
)

var (
	cfgFile      string
	embedWorkers int
)

var rootCmd = &cobra.Command{
	Use:   "semlabel",
	Short: "Retrieval-based hierarchical text classifier",
	Long: `semlabel classifies text by nearest-neighbor retrieval: a labeled
corpus is embedded and indexed, and each query's recalled neighbors vote
on its hierarchical label (e.g. 体育##篮球).

Configuration comes from a YAML file (--config or SEMLABEL_CONFIG) and
SEMLABEL_* environment variables; the environment wins.

Examples:
  # Classify queries from stdin against a corpus
  semlabel classify --corpus corpus.tsv < queries.txt

  # Inspect raw neighbors for index tuning
  semlabel recall --corpus corpus.tsv -k 20 < queries.txt

  # Train the linear encoder and reuse it
  semlabel train --pairs pairs.tsv --out encoder.bin
  SEMLABEL_ENCODER=linear SEMLABEL_MODEL_PATH=encoder.bin \
    semlabel classify --corpus corpus.tsv < queries.txt`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("semlabel %s\n", config.Version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML)")
	rootCmd.PersistentFlags().IntVar(&embedWorkers, "embed-workers", 1, "goroutines embedding the corpus")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads and validates configuration, then installs the logger.
// Results go to stdout, so logs are JSON on stderr.
func loadConfig() (config.Config, error) {
	if cfgFile != "" {
		os.Setenv("SEMLABEL_CONFIG", cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Setup(true, logging.ParseLevel(cfg.LogLevel))
	return cfg, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// buildEngine embeds the corpus file and wires the full recall path.
// The caller owns the returned encoder and must Close it.
func buildEngine(cfg config.Config, corpusPath string) (*recall.Engine, encoder.Encoder, error) {
	enc, err := encoder.New(encoder.Config{
		Backend:       cfg.Encoder.Backend,
		Dim:           cfg.Encoder.Dim,
		Seed:          cfg.Encoder.Seed,
		ModelPath:     cfg.Encoder.ModelPath,
		TokenizerPath: cfg.Encoder.TokenizerPath,
		MaxSeqLen:     cfg.Encoder.MaxSeqLen,
	})
	if err != nil {
		return nil, nil, err
	}

	examples, report, err := corpus.LoadExamples(corpusPath)
	if err != nil {
		enc.Close()
		return nil, nil, err
	}
	if report.Malformed > 0 {
		slog.Warn("corpus has malformed lines",
			"file", corpusPath, "malformed", report.Malformed, "loaded", len(examples))
	}

	entries, err := corpus.Embed(enc, examples, corpus.EmbedOptions{Workers: embedWorkers})
	if err != nil {
		enc.Close()
		return nil, nil, err
	}
	slog.Info("corpus embedded", "entries", len(entries), "dim", enc.Dim())

	idx, err := index.Build(entries, index.Config{
		M:              cfg.Index.M,
		EfConstruction: cfg.Index.EfConstruction,
		Metric:         index.Metric(cfg.Index.Metric),
		Seed:           cfg.Index.Seed,
	})
	if err != nil {
		enc.Close()
		return nil, nil, err
	}

	eng := recall.New(enc, index.NewHolder(idx), recall.Config{
		K:        cfg.Recall.K,
		EfSearch: cfg.Recall.EfSearch,
		Timeout:  cfg.Recall.Timeout,
	})
	return eng, enc, nil
}

// voteOptions maps config to voting options.
func voteOptions(cfg config.Config) (vote.Options, error) {
	strategy, err := vote.ParseStrategy(cfg.Vote.Strategy)
	if err != nil {
		return vote.Options{}, err
	}
	return vote.Options{
		Strategy:      strategy,
		Depth:         cfg.Vote.Depth,
		MinConfidence: cfg.Vote.MinConfidence,
	}, nil
}

// buildOutput assembles the prediction sink: stdout always, plus a file
// and/or a webhook when configured. The webhook runs behind an async
// buffer so slow endpoints do not stall classification.
func buildOutput(cfg config.Config) (output.Output, error) {
	format := stdout.JSON
	if cfg.Output.Format == "tsv" {
		format = stdout.TSV
	}
	outputs := []output.Output{stdout.New(format, cfg.Output.Pretty)}

	if cfg.Output.File != "" {
		f, err := file.New(cfg.Output.File)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, f)
	}
	if cfg.Output.WebhookURL != "" {
		outputs = append(outputs, async.New(webhook.New(cfg.Output.WebhookURL)))
	}

	if len(outputs) == 1 {
		return outputs[0], nil
	}
	return multi.New(outputs...), nil
}

// openInput returns the query source: stdin for "-", a file otherwise.
func openInput(path string) (*os.File, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// logStats emits the end-of-run summary.
func logStats(processed, skipped, unclassified int) {
	slog.Info("run complete",
		"processed", processed, "skipped", skipped, "unclassified", unclassified)
}
