package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aristath/fundrisk/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fundrisk version %s\n", version.Version)
	},
}
