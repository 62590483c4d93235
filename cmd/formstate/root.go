package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/formstate/internal/cli"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "formstate",
	Short: "formstate is a schema-driven form state engine",
	Long: `formstate turns declarative schemas into editable, validated and resumable forms.
Inspect a schema, validate a values file, fill a form interactively or serve forms over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	if !cli.IsInvalid(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("store", envOr("FORMSTATE_STORE", cli.StoreFile), "Snapshot store: file, memory, redis or sqlite")
	flags.String("store-dir", cli.DefaultStoreDir, "Directory of the file store")
	flags.String("redis", envOr("FORMSTATE_REDIS_ADDR", "localhost:6379"), "Redis address for the redis store")
	flags.String("redis-password", os.Getenv("FORMSTATE_REDIS_PASSWORD"), "Redis password")
	flags.Int("redis-db", 0, "Redis database number")
	flags.String("sqlite", "formstate.db", "Database file for the sqlite store")
	flags.StringSlice("mask", nil, "Regular expressions of field names blanked before saving")
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.Bool("log-json", false, "Write debug logs as JSON")
}

// options reads the persistent flags.
func options(cmd *cobra.Command) cli.Options {
	flags := cmd.Flags()
	store, _ := flags.GetString("store")
	storeDir, _ := flags.GetString("store-dir")
	redisAddr, _ := flags.GetString("redis")
	redisPassword, _ := flags.GetString("redis-password")
	redisDB, _ := flags.GetInt("redis-db")
	sqlitePath, _ := flags.GetString("sqlite")
	mask, _ := flags.GetStringSlice("mask")
	debug, _ := flags.GetBool("debug")
	logJSON, _ := flags.GetBool("log-json")

	return cli.Options{
		Store:         store,
		StoreDir:      storeDir,
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		RedisDB:       redisDB,
		SQLitePath:    sqlitePath,
		EncryptionKey: os.Getenv("FORMSTATE_ENCRYPTION_KEY"),
		MaskFields:    mask,
		Debug:         debug,
		LogJSON:       logJSON,
	}
}

// stdio returns the process streams, interactive when both ends are a terminal.
func stdio() cli.IO {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	return cli.StdIO(interactive)
}

func schemaRef(cmd *cobra.Command, path string) cli.SchemaRef {
	component, _ := cmd.Flags().GetString("component")
	return cli.SchemaRef{Path: path, Component: component}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
