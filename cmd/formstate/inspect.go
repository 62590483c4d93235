package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <schema>",
	Short: "Show the initial (or stored) state of a schema",
	Long: `Prints the state introspected from a schema: every field with its presentation
type and initial value. With --key the stored snapshot is resumed first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, _ := cmd.Flags().GetString("key")
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.Inspect(cmd.Context(), options(cmd), schemaRef(cmd, args[0]), key, asJSON, stdio())
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("component", "", "Component name inside an OpenAPI document")
	inspectCmd.Flags().String("key", "", "Resume the snapshot stored under this key")
	inspectCmd.Flags().Bool("json", false, "Print the state as JSON")
}
