package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arliden/semlabel/internal/corpus"
	"github.com/arliden/semlabel/internal/encoder"
	"github.com/arliden/semlabel/internal/trainer"
)

var (
	trainPairs string
	trainOut   string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the dual encoder on (query, positive) pairs",
	Long: `Train fits the linear encoder with an in-batch-negatives
contrastive objective: within each batch, every pair's positive text
serves as a negative for every other pair.

Pairs file format: query and positive text joined by a tab, one pair
per line. Hyperparameters come from the train section of the config
(SEMLABEL_TRAIN_*).

Examples:
  semlabel train --pairs pairs.tsv --out encoder.bin
  SEMLABEL_TRAIN_EPOCHS=5 semlabel train --pairs pairs.tsv --out encoder.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Training always targets the linear backend; hash has no weights
		// and onnx weights are not trained here.
		enc, err := encoder.New(encoder.Config{
			Backend:   "linear",
			Dim:       cfg.Encoder.Dim,
			Seed:      cfg.Encoder.Seed,
			ModelPath: cfg.Encoder.ModelPath,
		})
		if err != nil {
			return err
		}
		defer enc.Close()
		linear, ok := enc.(*encoder.LinearEncoder)
		if !ok {
			return fmt.Errorf("encoder backend %T is not trainable", enc)
		}

		pairs, report, err := corpus.LoadPairs(trainPairs)
		if err != nil {
			return err
		}
		if report.Malformed > 0 {
			slog.Warn("pairs file has malformed lines",
				"file", trainPairs, "malformed", report.Malformed, "loaded", len(pairs))
		}

		ctx, cancel := signalContext()
		defer cancel()

		tr := trainer.New(linear, trainer.Config{
			Margin:    cfg.Train.Margin,
			Scale:     cfg.Train.Scale,
			LearnRate: cfg.Train.LearnRate,
			Symmetric: cfg.Train.Symmetric,
		})
		stats, err := tr.Run(ctx, pairs, cfg.Train.BatchSize, cfg.Train.Epochs)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		interrupted := errors.Is(err, context.Canceled)

		if len(stats) == 0 {
			return fmt.Errorf("no completed epochs, nothing to save")
		}
		if err := linear.Save(trainOut); err != nil {
			return err
		}
		slog.Info("encoder saved", "path", trainOut,
			"epochs", len(stats), "final_loss", stats[len(stats)-1].MeanLoss,
			"interrupted", interrupted)
		return nil
	},
}

func init() {
	trainCmd.Flags().StringVar(&trainPairs, "pairs", "", "training pairs TSV file (required)")
	trainCmd.Flags().StringVarP(&trainOut, "out", "o", "", "output path for trained weights (required)")
	trainCmd.MarkFlagRequired("pairs")
	trainCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(trainCmd)
}
