package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cryptoStats/internal/config"
	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/render"
	"cryptoStats/internal/statsapi"
)

func runFetch(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Coin = args[0]
	}
	if cfg.Format != "text" && cfg.Format != "json" {
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := statsapi.NewClient(cfg.API.Client(), logger)
	if err != nil {
		return err
	}

	recorder, closeRecorder, err := newRecorder(ctx, cfg.RecordOut, cfg.PGDSN, logger)
	if err != nil {
		return err
	}
	defer closeRecorder()

	dash, err := dashboard.New(dashboard.Config{InitialCoin: cfg.Coin}, client, recorder, logger)
	if err != nil {
		return err
	}
	defer dash.Close()

	dash.Start(ctx)
	dash.Wait()

	state := dash.State()
	view := render.NewView(state)

	out := cmd.OutOrStdout()
	switch cfg.Format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			return fmt.Errorf("encode view: %w", err)
		}
	default:
		if err := render.Text(out, view); err != nil {
			return err
		}
	}

	if state.Error != "" {
		return fmt.Errorf("fetch %s: %s", state.Coin.ID, state.Error)
	}
	return nil
}
