package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/sitepass"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of sitepass",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sitepass version %s\n", strings.TrimSpace(sitepass.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
