package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/pipeline"
)

var (
	classifyCorpus string
	classifyInput  string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify query texts against an embedded corpus",
	Long: `Classify reads one query per line, recalls its nearest corpus
neighbors, and lets them vote on a label. Predictions go to stdout as
NDJSON (or TSV via SEMLABEL_OUTPUT_FORMAT=tsv); logs go to stderr.

Corpus file format: one record per line, text and ##-separated label
joined by a tab:

  湖人 击败 勇士 夺得 总冠军<TAB>体育##篮球

Examples:
  semlabel classify --corpus corpus.tsv < queries.txt
  semlabel classify --corpus corpus.tsv --input queries.txt
  SEMLABEL_MIN_CONFIDENCE=0.5 semlabel classify --corpus corpus.tsv < queries.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		voteOpts, err := voteOptions(cfg)
		if err != nil {
			return err
		}

		eng, enc, err := buildEngine(cfg, classifyCorpus)
		if err != nil {
			return err
		}
		defer enc.Close()

		out, err := buildOutput(cfg)
		if err != nil {
			return err
		}

		in, closeIn, err := openInput(classifyInput)
		if err != nil {
			return err
		}
		defer closeIn()

		ctx, cancel := signalContext()
		defer cancel()

		p := pipeline.New(eng, voteOpts, out)
		defer p.Close()

		stats, err := p.Run(ctx, in)
		logStats(stats.Processed, stats.Skipped, stats.Unclassified)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyCorpus, "corpus", "", "labeled corpus TSV file (required)")
	classifyCmd.Flags().StringVarP(&classifyInput, "input", "i", "-", "query file, - for stdin")
	classifyCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(classifyCmd)
}
