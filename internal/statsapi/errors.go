package statsapi

import (
	"errors"
	"net/http"
)

// User-visible messages for non-2xx responses. Keep the wording stable, the
// dashboard shows them verbatim.
var (
	ErrStatsFetch     = errors.New("Failed to fetch stats")
	ErrDeviationFetch = errors.New("Failed to fetch deviation")
)

// Endpoint names one of the two stats API resources.
type Endpoint string

const (
	EndpointStats     Endpoint = "stats"
	EndpointDeviation Endpoint = "deviation"
)

// Reason classifies why a request failed.
type Reason string

const (
	ReasonStatus    Reason = "status"
	ReasonTransport Reason = "transport"
	ReasonDecode    Reason = "decode"
)

// FetchError is returned by every Client method on failure.
type FetchError struct {
	Endpoint Endpoint
	Reason   Reason
	Coin     string
	Status   int
	Err      error
}

func (e *FetchError) Error() string {
	return e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func statusError(endpoint Endpoint, coin string, status int) *FetchError {
	err := ErrStatsFetch
	if endpoint == EndpointDeviation {
		err = ErrDeviationFetch
	}
	return &FetchError{Endpoint: endpoint, Reason: ReasonStatus, Coin: coin, Status: status, Err: err}
}

// retryable reports whether a failed request may succeed when repeated.
func retryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch fe.Reason {
	case ReasonTransport:
		return true
	case ReasonStatus:
		return fe.Status >= http.StatusInternalServerError || fe.Status == http.StatusTooManyRequests
	default:
		return false
	}
}
