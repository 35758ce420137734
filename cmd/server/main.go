package main

import (
	"os"

	"go-weave/internal/log"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "weave",
	Short:         "Workflow graph backend: graph editing, run dispatch and progress, upload tracking",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config.yaml or ./config/config.yaml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		log.GetLogger().WithError(err).Error("weave exited with error")
		os.Exit(1)
	}
}
