package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pricing "cardlens/internal/feature/pricing/domain/entity"
	pricingusecase "cardlens/internal/feature/pricing/usecase"
)

func priceCmd() *cobra.Command {
	var (
		rarity    int
		condition string
		basePrice float64
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compute the price multiplier for a rarity score and condition",
		Example: `  cardctl price --rarity 95 --condition Mint
  cardctl price --rarity 40 --condition Played --base-price 20`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := pricing.ValidateRarity(rarity); err != nil {
				return fmt.Errorf("--rarity: %w", err)
			}
			cond, err := pricing.ParseCondition(condition)
			if err != nil {
				return err
			}

			est := pricingusecase.NewPricingUsecase(nil).Estimate(basePrice, rarity, cond)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Condition:  %s\n", cond)
			fmt.Fprintf(out, "Rarity:     %d\n", rarity)
			fmt.Fprintf(out, "Multiplier: %.2fx (%s)\n", est.Multiplier, est.Method)
			if cmd.Flags().Changed("base-price") {
				fmt.Fprintf(out, "Estimate:   $%.2f\n", est.EstimatedPrice)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&rarity, "rarity", 0, "rarity score (0-100)")
	cmd.Flags().StringVar(&condition, "condition", string(pricing.DefaultCondition), "card condition (Damaged, Played, Mint)")
	cmd.Flags().Float64Var(&basePrice, "base-price", 0, "base price to scale")
	_ = cmd.MarkFlagRequired("rarity")
	return cmd
}
