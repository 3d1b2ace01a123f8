package storage

import (
	"context"
	"errors"

	"cryptoStats/internal/model"
)

// Storage defines a sink for completed cycle records.
type Storage interface {
	PutCycle(ctx context.Context, record model.CycleRecord) error
}

// Multi writes every record to all sinks and joins their errors.
type Multi []Storage

func (m Multi) PutCycle(ctx context.Context, record model.CycleRecord) error {
	var errs []error
	for _, sink := range m {
		if err := sink.PutCycle(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
