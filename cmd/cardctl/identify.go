package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cardlens/internal/app/di"
	appraisal "cardlens/internal/feature/appraisal/domain/entity"
	identification "cardlens/internal/feature/identification/domain/entity"
	pricing "cardlens/internal/feature/pricing/domain/entity"
)

func identifyCmd() *cobra.Command {
	var (
		strategy  string
		condition string
	)

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify a card image and estimate its price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strat, err := identification.ParseStrategy(strategy)
			if err != nil {
				return fmt.Errorf("%w: %q", err, strategy)
			}
			cond, err := pricing.ParseCondition(condition)
			if err != nil {
				return err
			}
			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			c, err := di.Build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			a, err := c.Appraisal.IdentifyAndPrice(cmd.Context(), image, cond, strat)
			if err != nil {
				return err
			}
			writeReport(cmd.OutOrStdout(), a)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(identification.StrategyORB), "identification strategy (orb, ocr)")
	cmd.Flags().StringVar(&condition, "condition", string(pricing.DefaultCondition), "card condition (Damaged, Played, Mint)")
	return cmd
}

// writeReport は鑑定結果を人が読める形式で出力します。
func writeReport(w io.Writer, a *appraisal.Appraisal) {
	switch a.Status {
	case appraisal.StatusPriced:
		fmt.Fprintf(w, "Identified: %s\n", a.Card.Name)
		fmt.Fprintf(w, "Series:     %s\n", a.Card.Series)
		fmt.Fprintf(w, "Base price: $%.2f\n", a.Card.BasePrice)
		fmt.Fprintf(w, "Condition:  %s (%.2fx, %s)\n", a.Condition, a.Estimate.Multiplier, a.Estimate.Method)
		fmt.Fprintf(w, "Estimate:   $%.2f\n", a.Estimate.EstimatedPrice)
		fmt.Fprintf(w, "Confidence: %d\n", a.Score)
	case appraisal.StatusMatchedUnknown:
		fmt.Fprintf(w, "Matched %q but it is not in the catalog (confidence: %d)\n", a.CandidateID, a.Score)
	case appraisal.StatusNoCorpus:
		fmt.Fprintln(w, "No reference images available for matching")
	default:
		if a.Threshold > 0 {
			fmt.Fprintf(w, "Card not identified (best score: %d, threshold: %d)\n", a.Score, a.Threshold)
			return
		}
		fmt.Fprintf(w, "Card not identified (best score: %d)\n", a.Score)
	}
}
