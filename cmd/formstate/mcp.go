package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [schema-dir]",
	Short: "Start the MCP server",
	Long: `Exposes the schemas of a directory as Model Context Protocol tools, so an
agent can fill forms call by call. Progress is saved in the configured store.
Uses stdin/stdout unless --sse-port is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("sse-port")
		stripHTML, _ := cmd.Flags().GetBool("strip-html")
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		mo := cli.MCPOptions{SchemaDir: dir, SSEPort: port, StripHTML: stripHTML}
		return cli.ServeMCP(cmd.Context(), options(cmd), mo, stdio())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().Int("sse-port", 0, "Serve over SSE on this port instead of stdio")
	mcpCmd.Flags().Bool("strip-html", false, "Strip HTML markup from submitted values")
}
