package dashboard

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"cryptoStats/internal/model"
	"cryptoStats/internal/statsapi"
)

// ErrorKind classifies the error of the last completed cycle.
type ErrorKind string

const (
	ErrorNone      ErrorKind = ""
	ErrorStats     ErrorKind = "stats"
	ErrorDeviation ErrorKind = "deviation"
	ErrorTransport ErrorKind = "transport"
	ErrorDecode    ErrorKind = "decode"
)

// State is a point-in-time view of the dashboard.
type State struct {
	Coin       model.Coin
	Stats      *model.Stats
	Deviation  decimal.NullDecimal
	Loading    bool
	Error      string
	ErrorKind  ErrorKind
	Generation uint64
	UpdatedAt  time.Time
}

func errorKindOf(err error) ErrorKind {
	var fe *statsapi.FetchError
	if !errors.As(err, &fe) {
		return ErrorTransport
	}
	switch fe.Reason {
	case statsapi.ReasonStatus:
		if fe.Endpoint == statsapi.EndpointDeviation {
			return ErrorDeviation
		}
		return ErrorStats
	case statsapi.ReasonDecode:
		return ErrorDecode
	default:
		return ErrorTransport
	}
}
