package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cryptoStats/internal/config"
	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/server"
	"cryptoStats/internal/statsapi"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
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

	logger.Info("dashboard start",
		zap.String("listen", cfg.Listen),
		zap.String("api_base_url", client.BaseURL()),
		zap.String("coin", dash.State().Coin.ID),
		zap.Duration("timeout", cfg.API.Timeout),
		zap.Int("max_retries", cfg.API.MaxRetries),
	)

	dash.Start(ctx)

	return server.New(dash, logger).ListenAndServe(ctx, cfg.Listen, cfg.ShutdownTimeout)
}
