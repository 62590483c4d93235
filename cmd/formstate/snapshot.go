package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Aliases: []string{"snap"},
	Short:   "Manage stored form snapshots",
}

var snapshotLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored snapshot keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.ListSnapshots(cmd.Context(), options(cmd), stdio())
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <key>",
	Short: "Show a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.ShowSnapshot(cmd.Context(), options(cmd), args[0], asJSON, stdio())
	},
}

var snapshotRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Remove a stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.RemoveSnapshot(cmd.Context(), options(cmd), args[0], stdio())
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotLsCmd, snapshotInspectCmd, snapshotRmCmd)
	snapshotInspectCmd.Flags().Bool("json", false, "Print the snapshot as JSON")
}
