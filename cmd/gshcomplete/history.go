package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	flagExitCode = "exit-code"
	flagLimit    = "limit"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage the command history used for inline suggestions",
	}
	cmd.AddCommand(newHistoryAddCmd(a), newHistoryListCmd(a), newHistoryResetCmd(a))
	return cmd
}

func newHistoryAddCmd(a *app) *cobra.Command {
	var cwd string
	var exitCode int
	cmd := &cobra.Command{
		Use:   "add [flags] -- <command>",
		Short: "Record an executed command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCwd(cwd)
			if err != nil {
				return err
			}

			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			var code *int
			if cmd.Flags().Changed(flagExitCode) {
				code = &exitCode
			}
			_, err = store.Add(cmd.Context(), args[0], dir, code)
			return err
		},
	}
	cmd.Flags().StringVar(&cwd, flagCwd, "", "Directory the command ran in (default: current directory)")
	cmd.Flags().IntVar(&exitCode, flagExitCode, 0, "Exit code of the command")
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var cwd string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recent commands, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), cwd, limit)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if _, err := fmt.Fprintf(a.stdout, "%5d  %s\n", entry.ID, entry.Command); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cwd, flagCwd, "", "Only list commands run in this directory")
	cmd.Flags().IntVar(&limit, flagLimit, 20, "Maximum number of commands to print")
	return cmd
}

func newHistoryResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete every recorded command",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()
			return store.Reset(cmd.Context())
		},
	}
}
