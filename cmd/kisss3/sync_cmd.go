package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single reconciliation and exit",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromViper()
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true

		_, engine, _, cleanup, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		res := engine.RunOnce(cmd.Context())
		if res.Err != nil {
			return fmt.Errorf("sync: %w", res.Err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
