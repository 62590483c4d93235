package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var fillCmd = &cobra.Command{
	Use:   "fill <schema>",
	Short: "Fill a form interactively",
	Long: `Prompts for every field of the schema, asking again for invalid answers, and prints
the validated result as JSON. With --key the form resumes from and saves to the store,
so an interrupted fill continues where it stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		fo := cli.FillOptions{}
		fo.Key, _ = flags.GetString("key")
		fo.JSON, _ = flags.GetBool("json")
		fo.Fresh, _ = flags.GetBool("fresh")
		fo.Steps, _ = flags.GetStringArray("step")
		fo.MaxAttempts, _ = flags.GetInt("max-attempts")
		fo.Discard, _ = flags.GetBool("discard")
		fo.StripHTML, _ = flags.GetBool("strip-html")
		return cli.Fill(cmd.Context(), options(cmd), schemaRef(cmd, args[0]), fo, stdio())
	},
}

func init() {
	rootCmd.AddCommand(fillCmd)
	flags := fillCmd.Flags()
	flags.String("component", "", "Component name inside an OpenAPI document")
	flags.StringP("key", "k", "", "Storage key to resume from and save to")
	flags.Bool("json", false, "Prompt with JSON Lines on stdin/stdout")
	flags.Bool("fresh", false, "Discard the stored snapshot before starting")
	flags.StringArray("step", nil, "Comma separated fields of one wizard step (repeatable)")
	flags.Int("max-attempts", 0, "Give up after this many invalid passes of a step (0 = unlimited)")
	flags.Bool("discard", false, "Remove the snapshot once the form is valid")
	flags.Bool("strip-html", false, "Strip HTML markup from answers")
}
