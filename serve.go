package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"parcel-tax-scraper/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initLookup(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		opts := []server.Option{server.WithTitle(env.Jurisdiction.Name + " Scraper Test")}
		if env.DB != nil {
			opts = append(opts, server.WithRequestLog(env.DB))
		}
		srv, err := server.New(serverCfg, env.Searcher, opts...)
		if err != nil {
			return err
		}

		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
