// cardctl はカタログの取り込みと一覧、鑑定、価格計算、管理トークン発行を行うCLIです。
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cardlens/internal/config"
	"cardlens/internal/platform/logging"
)

var (
	cfgFile string
	cfg     *config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cardctl",
		Short:         "Trading card identification and pricing tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(priceCmd())
	root.AddCommand(identifyCmd())
	root.AddCommand(importCmd())
	root.AddCommand(cardsCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(corpusCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
