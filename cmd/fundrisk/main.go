// Package main is the fundrisk command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aristath/fundrisk/pkg/logger"
)

var (
	logLevel string
	log      zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fundrisk",
	Short: "Risk answers from fund position statements",
	Long: `fundrisk reads a month of ANBIMA / ISO 20022 fund position statements
(XML files, directories or ZIP archives) and answers the standard
13-question risk questionnaire: VaR, stress scenarios and sensitivities.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logger.New(logger.Config{
			Level:  logLevel,
			Pretty: true,
			Output: os.Stderr,
		})
		logger.SetGlobalLogger(log)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
