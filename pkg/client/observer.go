package client

import (
	"time"

	"github.com/goliatone/go-recoform/pkg/model"
)

// Outcome labels a finished call.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomeServerError     Outcome = "server_error"
	OutcomeTransportError  Outcome = "transport_error"
	OutcomeInvalidResponse Outcome = "invalid_response"
	OutcomeRejected        Outcome = "rejected"
)

// Observer receives call and breaker events, typically to export metrics.
type Observer interface {
	ObserveRequest(method model.Method, outcome Outcome, elapsed time.Duration)
	ObserveBreakerState(name, state string)
}

type nopObserver struct{}

func (nopObserver) ObserveRequest(model.Method, Outcome, time.Duration) {}
func (nopObserver) ObserveBreakerState(string, string)                  {}
