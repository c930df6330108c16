package form

import (
	"github.com/goliatone/go-recoform/pkg/model"
)

// Phase is the submit state machine position.
type Phase string

const (
	PhaseIdle       Phase = stateIdle
	PhaseValidating Phase = stateValidating
	PhaseRequesting Phase = stateRequesting
)

// ErrorKind tells renderers where a displayed error came from. It never
// changes the message text.
type ErrorKind string

const (
	ErrorKindNone       ErrorKind = ""
	ErrorKindValidation ErrorKind = "validation"
	ErrorKindServer     ErrorKind = "server"
	ErrorKindTransport  ErrorKind = "transport"
)

const (
	MessageNetwork = "Network error. Make sure the recommender service is running."
	MessageGeneric = "Error fetching recommendations"
)

// State is a snapshot of one form. Values returned by Form are copies.
type State struct {
	Method          model.Method
	UserID          string
	ItemID          string
	ProductID       string
	Recommendations []string
	Error           string
	ErrorKind       ErrorKind
	Phase           Phase
	// Generation counts submits. Only the response of the latest submit is
	// applied.
	Generation uint64
}

// Value returns the identifier bound to field.
func (s State) Value(field model.FieldName) string {
	switch field {
	case model.FieldUserID:
		return s.UserID
	case model.FieldItemID:
		return s.ItemID
	case model.FieldProductID:
		return s.ProductID
	default:
		return ""
	}
}

func (s *State) setValue(field model.FieldName, value string) {
	switch field {
	case model.FieldUserID:
		s.UserID = value
	case model.FieldItemID:
		s.ItemID = value
	case model.FieldProductID:
		s.ProductID = value
	}
}

func (s State) clone() State {
	out := s
	if s.Recommendations != nil {
		out.Recommendations = append([]string(nil), s.Recommendations...)
	}
	return out
}
