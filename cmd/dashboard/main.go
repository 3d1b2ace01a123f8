package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "dashboard",
		Short:        "Crypto stats dashboard",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE:  runServe,
	}

	addAPIFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().String("coin", "", "initially selected coin id (default first coin)")
	serveCmd.Flags().String("record-out", "", "optional JSONL file receiving every completed cycle")
	serveCmd.Flags().String("pg-dsn", "", "optional Postgres DSN receiving every completed cycle")
	serveCmd.Flags().Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	fetchCmd := &cobra.Command{
		Use:   "fetch [coin]",
		Short: "Run one stats cycle and print the cards",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFetch,
	}

	addAPIFlags(fetchCmd)
	fetchCmd.Flags().String("coin", "", "coin id (default first coin)")
	fetchCmd.Flags().String("format", "text", "output format (text, json)")
	fetchCmd.Flags().String("record-out", "", "optional JSONL file receiving the cycle")
	fetchCmd.Flags().String("pg-dsn", "", "optional Postgres DSN receiving the cycle")
	fetchCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(fetchCmd)

	coinsCmd := &cobra.Command{
		Use:   "coins",
		Short: "List selectable coins",
		RunE:  runCoins,
	}

	coinsCmd.Flags().Bool("json", false, "print as JSON")

	root.AddCommand(coinsCmd)

	return root
}

func addAPIFlags(cmd *cobra.Command) {
	cmd.Flags().String("api-base-url", "", "stats API base URL")
	cmd.Flags().Duration("timeout", 0, "per-request timeout, 0 means transport default")
	cmd.Flags().Int("max-retries", 0, "retries for transport errors and 5xx responses")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
