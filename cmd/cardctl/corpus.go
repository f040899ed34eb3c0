package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cardlens/internal/app/di"
	platformredis "cardlens/internal/platform/redis"
)

func corpusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Inspect the reference image corpus",
	}
	cmd.AddCommand(corpusBuildCmd(), corpusPurgeCmd())
	return cmd
}

func corpusBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Extract descriptors for every reference image and list the usable ones",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rdb, err := platformredis.NewRedisClient(cmd.Context(), platformredis.Config{
				Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
			})
			if err != nil {
				return err
			}
			if rdb != nil {
				defer rdb.Close()
			}

			store, _ := di.NewCorpusStore(cfg, rdb, nil)
			corpus, err := store.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i := range corpus.Len() {
				ref := corpus.At(i)
				fmt.Fprintf(out, "%-40s %d descriptors\n", ref.ID, len(ref.Descriptors))
			}
			fmt.Fprintf(out, "%d references in %s\n", corpus.Len(), cfg.Corpus.Dir)
			return nil
		},
	}
}

func corpusPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Delete cached reference descriptors from Redis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rdb, err := platformredis.NewRedisClient(cmd.Context(), platformredis.Config{
				Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB,
			})
			if err != nil {
				return err
			}
			if rdb == nil {
				return errors.New("redis.addr is not set, nothing to purge")
			}
			defer rdb.Close()

			_, cached := di.NewCorpusStore(cfg, rdb, nil)
			if err := cached.Purge(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "descriptor cache purged")
			return nil
		},
	}
}
