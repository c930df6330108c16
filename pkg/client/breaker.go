package client

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

func newBreaker(cfg BreakerConfig, logger zerolog.Logger, observer Observer) *gobreaker.CircuitBreaker[[]string] {
	minRequests := cfg.MinRequests
	if minRequests == 0 {
		minRequests = 1
	}
	observer.ObserveBreakerState(breakerName, stateToString(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.HalfOpenMax,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_ratio", ratio).Msg("opening recommender circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit breaker state change")
			observer.ObserveBreakerState(name, stateToString(to))
		},
		// Only transport failures say anything about service health.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrTransport) || errors.Is(err, context.Canceled)
		},
	})
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
