package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cardlens/internal/app/di"
	catalogadapters "cardlens/internal/feature/catalog/adapters"
	catalogusecase "cardlens/internal/feature/catalog/usecase"
	"cardlens/internal/platform/db"
)

func importCmd() *cobra.Command {
	var csvPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import catalog records from a CSV file into the database",
		Long: `Reads a CSV with the columns "Card Name,Series,Base Price,Rarity Score" and upserts
every row by card name. Nothing is written if any row is invalid.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if csvPath == "" {
				csvPath = cfg.Catalog.CSVPath
			}

			gdb, err := db.Open(di.DBConfig(cfg.Catalog))
			if err != nil {
				return err
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			uc := catalogusecase.NewCatalogUsecase(catalogadapters.NewCardRepository(gdb))
			n, err := uc.Import(cmd.Context(), catalogadapters.NewCSVSource(csvPath))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cards from %s\n", n, csvPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to import (default: catalog.csv_path)")
	return cmd
}
