package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cryptoStats/internal/dashboard"
	"cryptoStats/internal/storage"
	"cryptoStats/internal/storage/postgres"
)

// newRecorder builds the optional cycle sinks. The returned recorder is nil
// when none is configured.
func newRecorder(ctx context.Context, recordOut, pgDSN string, logger *zap.Logger) (dashboard.Recorder, func(), error) {
	var sinks storage.Multi
	closers := make([]func(), 0, 1)

	if recordOut != "" {
		sinks = append(sinks, storage.NewJsonlStorage(recordOut))
	}

	if pgDSN != "" {
		store, err := postgres.NewStore(ctx, pgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closers = append(closers, store.Close)
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(sinks) == 0 {
		return nil, closeAll, nil
	}

	logger.Info("cycle recorder enabled",
		zap.String("record_out", recordOut),
		zap.String("pg_dsn", redactDSN(pgDSN)),
	)
	return sinks, closeAll, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
