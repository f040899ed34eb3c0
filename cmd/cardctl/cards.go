package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cardlens/internal/app/di"
	catalogadapters "cardlens/internal/feature/catalog/adapters"
	catalog "cardlens/internal/feature/catalog/domain/entity"
	catalogusecase "cardlens/internal/feature/catalog/usecase"
	pricing "cardlens/internal/feature/pricing/domain/entity"
	pricingusecase "cardlens/internal/feature/pricing/usecase"
	"cardlens/internal/platform/db"
)

func cardsCmd() *cobra.Command {
	var (
		csvPath   string
		condition string
	)

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List catalog records with their estimated price for a condition",
		Example: `  cardctl cards --condition Played
  cardctl cards --csv ./cards.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cond, err := pricing.ParseCondition(condition)
			if err != nil {
				return err
			}

			var cards []catalog.Card
			if csvPath != "" {
				cards, err = catalogadapters.NewCSVSource(csvPath).Load(cmd.Context())
			} else {
				cards, err = loadCatalog(cmd)
			}
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog is empty")
				return nil
			}

			pricer := pricingusecase.NewPricingUsecase(nil)
			rows := make([][]string, 0, len(cards))
			for _, c := range cards {
				est := pricer.Estimate(c.BasePrice, c.RarityScore, cond)
				rows = append(rows, []string{
					c.Name,
					c.Series,
					fmt.Sprintf("$%.2f", c.BasePrice),
					strconv.Itoa(c.RarityScore),
					fmt.Sprintf("%.2fx", est.Multiplier),
					fmt.Sprintf("$%.2f", est.EstimatedPrice),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Card", "Series", "Base", "Rarity", "Multiplier", string(cond)},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "read records from this CSV instead of the database")
	cmd.Flags().StringVar(&condition, "condition", string(pricing.DefaultCondition), "card condition (Damaged, Played, Mint)")
	return cmd
}

// loadCatalog はデータベース上のカタログを読み込みます。
func loadCatalog(cmd *cobra.Command) ([]catalog.Card, error) {
	gdb, err := db.Open(di.DBConfig(cfg.Catalog))
	if err != nil {
		return nil, err
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	return catalogusecase.NewCatalogUsecase(catalogadapters.NewCardRepository(gdb)).ListCards(cmd.Context())
}
