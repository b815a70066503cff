package cli

import (
	"fmt"

	"github.com/sadopc/contextflow/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(e *env) *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path, created, err := config.Init(dir)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}

	path := &cobra.Command{
		Use:   "path",
		Short: "Show the config, database and log paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			db := e.cfg.DBPath
			if e.dbPath != "" {
				db = e.dbPath
			}
			slot := e.cfg.Slot
			if e.slot != "" {
				slot = e.slot
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:   %s\n", p)
			fmt.Fprintf(out, "database: %s\n", db)
			fmt.Fprintf(out, "log:      %s\n", e.cfg.LogFile)
			fmt.Fprintf(out, "slot:     %s\n", slot)
			return nil
		},
	}

	cfg.AddCommand(initCmd, path)
	return cfg
}
