package commands

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/eval"
)

var (
	evalCorpus string
	evalGolden string
	evalDepth  int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score recall@K and accuracy against a golden set",
	Long: `Evaluate runs every golden (text, label) example through the full
pipeline and reports two numbers: recall@K, the fraction of queries
whose correct label appeared among the recalled neighbors (index
quality), and accuracy, the fraction whose voted prediction matched
(end-to-end quality). The metrics print to stdout as JSON.

The golden file uses the same TSV format as the corpus.

Examples:
  semlabel evaluate --corpus corpus.tsv --golden golden.tsv
  semlabel evaluate --corpus corpus.tsv --golden golden.tsv --depth 1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		voteOpts, err := voteOptions(cfg)
		if err != nil {
			return err
		}

		eng, enc, err := buildEngine(cfg, evalCorpus)
		if err != nil {
			return err
		}
		defer enc.Close()

		golden, report, err := corpus.LoadExamples(evalGolden)
		if err != nil {
			return err
		}
		if report.Malformed > 0 {
			slog.Warn("golden file has malformed lines",
				"file", evalGolden, "malformed", report.Malformed, "loaded", len(golden))
		}

		ctx, cancel := signalContext()
		defer cancel()

		metrics, err := eval.Evaluate(ctx, eng, golden, eval.Options{
			Vote:  voteOpts,
			Depth: evalDepth,
		})
		if err != nil {
			return err
		}

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(struct {
			RecallAtK float64 `json:"recall_at_k"`
			Accuracy  float64 `json:"accuracy"`
			K         int     `json:"k"`
			Depth     int     `json:"depth"`
			Total     int     `json:"total"`
			Evaluated int     `json:"evaluated"`
			Failed    int     `json:"failed"`
		}{
			RecallAtK: metrics.RecallAtK,
			Accuracy:  metrics.Accuracy,
			K:         cfg.Recall.K,
			Depth:     evalDepth,
			Total:     metrics.Total,
			Evaluated: metrics.Evaluated,
			Failed:    metrics.Failed,
		})
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&evalCorpus, "corpus", "", "labeled corpus TSV file (required)")
	evaluateCmd.Flags().StringVar(&evalGolden, "golden", "", "golden evaluation TSV file (required)")
	evaluateCmd.Flags().IntVar(&evalDepth, "depth", 0, "hierarchy depth for comparison, 0 = full path")
	evaluateCmd.MarkFlagRequired("corpus")
	evaluateCmd.MarkFlagRequired("golden")
	rootCmd.AddCommand(evaluateCmd)
}
