package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <values>",
	Short: "Validate a YAML or JSON values file against a schema",
	Long:  `Loads the values into a form, validates it and reports every field error. Exits 1 when invalid.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(cmd.Context(), options(cmd), schemaRef(cmd, args[0]), args[1], stdio())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("component", "", "Component name inside an OpenAPI document")
}
