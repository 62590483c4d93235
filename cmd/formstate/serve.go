package main

import (
	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [schema-dir]",
	Short: "Start the HTTP server",
	Long:  `Serves every schema file of a directory as live forms over a JSON API, with SSE diffs and Prometheus metrics.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")
		host, _ := cmd.Flags().GetString("host")
		stripHTML, _ := cmd.Flags().GetBool("strip-html")
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		so := cli.ServeOptions{Addr: host + ":" + port, SchemaDir: dir, StripHTML: stripHTML}
		return cli.Serve(cmd.Context(), options(cmd), so, stdio())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("host", "", "Interface to bind (empty for all)")
	serveCmd.Flags().Bool("strip-html", false, "Strip HTML markup from submitted values")
}
