package main

import (
	"github.com/spf13/cobra"

	"nuforcscraper/pkg/config"
	"nuforcscraper/pkg/export"
	"nuforcscraper/pkg/ui"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [export-file]",
	Short: "Show the summary of a previous export",
	Long: `Show the run summary written next to an export by --write-summary.

Without an argument the output path from the configuration is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	path, err := summaryTarget(args)
	if err != nil {
		return err
	}

	s, err := export.LoadSummary(path)
	if err != nil {
		return err
	}
	ui.PrintSummary(s)
	return nil
}

func summaryTarget(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return "", err
	}
	return cfg.Output.Path, nil
}
