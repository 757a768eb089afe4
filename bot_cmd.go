package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parcel-tax-scraper/bot"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Answer parcel lookups over Telegram",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initLookup(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		var opts []bot.Option
		if env.DB != nil {
			opts = append(opts, bot.WithRequestLog(env.DB))
		}
		b, err := bot.New(cfg.Telegram.Token, cfg.Telegram.AllowedUsers, env.Searcher, opts...)
		if err != nil {
			return err
		}

		return b.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}
