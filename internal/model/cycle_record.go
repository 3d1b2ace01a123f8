package model

import (
	"github.com/shopspring/decimal"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// CycleRecord describes one completed stats cycle for the recorder sinks.
type CycleRecord struct {
	Coin       string              `json:"coin"`
	Generation uint64              `json:"generation"`
	StartedAt  string              `json:"started_at"`
	FinishedAt string              `json:"finished_at"`
	Outcome    string              `json:"outcome"`
	ErrorKind  string              `json:"error_kind,omitempty"`
	Error      string              `json:"error,omitempty"`
	Stats      *Stats              `json:"stats,omitempty"`
	Deviation  decimal.NullDecimal `json:"deviation"`
}
