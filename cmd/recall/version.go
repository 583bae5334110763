package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/recall"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of recall",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "recall version %s\n", strings.TrimSpace(recall.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
