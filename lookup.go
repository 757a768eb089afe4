package main

import (
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"parcel-tax-scraper/models"
)

var lookupOutput string

var lookupCmd = &cobra.Command{
	Use:   "lookup <account>",
	Short: "Look up one parcel and print its tax record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupOutput != "json" && lookupOutput != "yaml" {
			return eris.Errorf("unknown output format %q (want json or yaml)", lookupOutput)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initLookup(ctx, false)
		if err != nil {
			return err
		}
		defer env.Close()

		record, err := env.Searcher.Search(ctx, args[0])
		if err != nil {
			return err
		}

		return writeRecord(os.Stdout, record, lookupOutput)
	},
}

func init() {
	lookupCmd.Flags().StringVarP(&lookupOutput, "output", "o", "json", "output format: json or yaml")
	rootCmd.AddCommand(lookupCmd)
}

// writeRecord prints record as indented JSON or as YAML.
func writeRecord(w io.Writer, record *models.TaxRecord, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return eris.Wrap(err, "encode yaml")
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(record); err != nil {
			return eris.Wrap(err, "encode json")
		}
		return nil
	}
}
