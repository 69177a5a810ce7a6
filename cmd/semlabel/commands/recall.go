package commands

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/output/stdout"
	"github.com/arliden/semlabel/internal/pipeline"
	"github.com/arliden/semlabel/internal/vote"
)

var (
	recallCorpus string
	recallInput  string
	recallK      int
)

var recallCmd = &cobra.Command{
	Use:   "recall",
	Short: "Dump ranked neighbors per query without voting",
	Long: `Recall shows what the classifier would vote over: for each query
line it prints the query followed by its neighbors, one per line, as
rank, label, and similarity score separated by tabs.

Use it to tune K, ef_search, and the confidence threshold before
running classify.

Examples:
  semlabel recall --corpus corpus.tsv < queries.txt
  semlabel recall --corpus corpus.tsv -k 20 --input queries.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("k") {
			cfg.Recall.K = recallK
		}

		eng, enc, err := buildEngine(cfg, recallCorpus)
		if err != nil {
			return err
		}
		defer enc.Close()

		in, closeIn, err := openInput(recallInput)
		if err != nil {
			return err
		}
		defer closeIn()

		ctx, cancel := signalContext()
		defer cancel()

		// Voting is bypassed; the pipeline only needs the recall path.
		p := pipeline.New(eng, vote.Options{}, stdout.New(stdout.TSV, false))
		defer p.Close()

		stats, err := p.RunRecall(ctx, in, os.Stdout)
		logStats(stats.Processed, stats.Skipped, 0)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	recallCmd.Flags().StringVar(&recallCorpus, "corpus", "", "labeled corpus TSV file (required)")
	recallCmd.Flags().StringVarP(&recallInput, "input", "i", "-", "query file, - for stdin")
	recallCmd.Flags().IntVarP(&recallK, "k", "k", 0, "neighbors per query (overrides config)")
	recallCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(recallCmd)
}
