package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/buml"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of buml",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "buml version %s\n", strings.TrimSpace(buml.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
