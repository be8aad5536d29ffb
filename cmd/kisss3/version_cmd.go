package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dim0x69/kisss3/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", version.AppName, version.Detailed())
		if version.BuildDate != "" {
			fmt.Printf("built %s\n", version.BuildDate)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
