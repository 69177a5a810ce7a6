package commands

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/index"
)

var indexCorpus string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the corpus index and report its stats",
	Long: `Index embeds the corpus and constructs the search graph, then
prints build statistics as JSON. The graph lives in process and is
rebuilt on each run; use this command to validate a corpus file and
measure embed/build cost before serving queries.

Examples:
  semlabel index --corpus corpus.tsv
  SEMLABEL_INDEX_M=32 semlabel index --corpus corpus.tsv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		enc, err := encoder.New(encoder.Config{
			Backend:       cfg.Encoder.Backend,
			Dim:           cfg.Encoder.Dim,
			Seed:          cfg.Encoder.Seed,
			ModelPath:     cfg.Encoder.ModelPath,
			TokenizerPath: cfg.Encoder.TokenizerPath,
			MaxSeqLen:     cfg.Encoder.MaxSeqLen,
		})
		if err != nil {
			return err
		}
		defer enc.Close()

		examples, report, err := corpus.LoadExamples(indexCorpus)
		if err != nil {
			return err
		}
		if report.Malformed > 0 {
			slog.Warn("corpus has malformed lines",
				"file", indexCorpus, "malformed", report.Malformed, "loaded", len(examples))
		}

		embedStart := time.Now()
		entries, err := corpus.Embed(enc, examples, corpus.EmbedOptions{Workers: embedWorkers})
		if err != nil {
			return err
		}
		embedDur := time.Since(embedStart)

		buildStart := time.Now()
		idx, err := index.Build(entries, index.Config{
			M:              cfg.Index.M,
			EfConstruction: cfg.Index.EfConstruction,
			Metric:         index.Metric(cfg.Index.Metric),
			Seed:           cfg.Index.Seed,
		})
		if err != nil {
			return err
		}
		buildDur := time.Since(buildStart)

		out := json.NewEncoder(os.Stdout)
		out.SetIndent("", "  ")
		return out.Encode(struct {
			Entries        int    `json:"entries"`
			Malformed      int    `json:"malformed"`
			Dim            int    `json:"dim"`
			Metric         string `json:"metric"`
			M              int    `json:"m"`
			EfConstruction int    `json:"ef_construction"`
			EmbedMillis    int64  `json:"embed_ms"`
			BuildMillis    int64  `json:"build_ms"`
		}{
			Entries:        idx.Len(),
			Malformed:      report.Malformed,
			Dim:            idx.Dim(),
			Metric:         string(idx.Metric()),
			M:              cfg.Index.M,
			EfConstruction: cfg.Index.EfConstruction,
			EmbedMillis:    embedDur.Milliseconds(),
			BuildMillis:    buildDur.Milliseconds(),
		})
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexCorpus, "corpus", "", "labeled corpus TSV file (required)")
	indexCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(indexCmd)
}
