// Package form holds the recommendation form state and its submit
// lifecycle. A Form keeps the selected method, the three identifier values
// and the result panel, validates the identifier bound to the current
// method, asks a Recommender for results and maps the outcome onto the
// display state.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/client"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/visibility"
	"github.com/goliatone/go-recoform/pkg/visibility/expr"
)

// Recommender fetches recommendations for an identifier. *client.Client
// satisfies it.
type Recommender interface {
	Recommend(ctx context.Context, method model.Method, identifier string) ([]string, error)
}

// RecommenderFunc adapts a function into a Recommender.
type RecommenderFunc func(ctx context.Context, method model.Method, identifier string) ([]string, error)

func (fn RecommenderFunc) Recommend(ctx context.Context, method model.Method, identifier string) ([]string, error) {
	return fn(ctx, method, identifier)
}

// Option customises a Form.
type Option func(*Form)

// WithEvaluator replaces the visibility evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(f *Form) {
		if evaluator != nil {
			f.evaluator = evaluator
		}
	}
}

// WithLogger sets the logger for submit outcomes.
func WithLogger(logger zerolog.Logger) Option {
	return func(f *Form) {
		f.logger = logger
	}
}

// WithMethod sets the initially selected method.
func WithMethod(method model.Method) Option {
	return func(f *Form) {
		f.state.Method = method
	}
}

// Form is safe for concurrent use.
type Form struct {
	mu          sync.Mutex
	model       model.FormModel
	evaluator   visibility.Evaluator
	recommender Recommender
	logger      zerolog.Logger
	interp      *statekit.Interpreter[machineContext]
	state       State
	cancel      context.CancelFunc
}

// New constructs a Form in the idle phase with the default method selected.
func New(m model.FormModel, recommender Recommender, opts ...Option) (*Form, error) {
	if recommender == nil {
		return nil, errors.New("form: recommender is required")
	}
	f := &Form{
		model:       m,
		evaluator:   expr.New(),
		recommender: recommender,
		logger:      logging.WithComponent("form"),
		state:       State{Method: model.DefaultMethod(), Phase: PhaseIdle},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	if !f.state.Method.Valid() {
		return nil, fmt.Errorf("form: initial method %q: %w", f.state.Method, model.ErrUnknownMethod)
	}
	if err := m.Validate(f.evaluator); err != nil {
		return nil, fmt.Errorf("form: %w", err)
	}

	interp, err := buildMachine()
	if err != nil {
		return nil, err
	}
	f.interp = interp
	return f, nil
}

// Model returns the form model the form was built from.
func (f *Form) Model() model.FormModel {
	return f.model
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// Current returns a snapshot together with the field bound to its method.
func (f *Form) Current() (State, model.Field) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, _ := f.visibleField(f.state.Method)
	return f.state.clone(), field
}

// SelectMethod switches the method. Identifier values, recommendations and
// errors are left as they are.
func (f *Form) SelectMethod(method model.Method) error {
	if !method.Valid() {
		return fmt.Errorf("form: %q: %w", method, model.ErrUnknownMethod)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.Method = method
	return nil
}

// SelectMethodString parses raw and selects it.
func (f *Form) SelectMethodString(raw string) error {
	method, err := model.ParseMethod(raw)
	if err != nil {
		return fmt.Errorf("form: %w", err)
	}
	return f.SelectMethod(method)
}

// Field returns the identifier field visible for the current method.
func (f *Form) Field() model.Field {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, _ := f.visibleField(f.state.Method)
	return field
}

// SetIdentifier stores value, verbatim, in the field bound to the current
// method.
func (f *Form) SetIdentifier(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, _ := f.visibleField(f.state.Method)
	f.state.setValue(field.Name, value)
}

// Identifier returns the value of the field bound to the current method.
func (f *Form) Identifier() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	field, _ := f.visibleField(f.state.Method)
	return f.state.Value(field.Name)
}

func (f *Form) visibleField(method model.Method) (model.Field, error) {
	// the model was validated in New so this only fails on a broken evaluator
	field, err := f.model.VisibleField(method, f.evaluator)
	if err != nil {
		f.logger.Error().Err(err).Str("method", string(method)).Msg("resolve identifier field")
	}
	return field, err
}

// Submit validates the bound identifier and, when present, requests
// recommendations. A submit cancels any request still in flight for this
// form; a response is applied only if no newer submit started meanwhile.
// The returned state is the snapshot after this submit settled.
func (f *Form) Submit(ctx context.Context) State {
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.state.Generation++
	generation := f.state.Generation
	method := f.state.Method
	f.send(eventSubmit)

	field, err := f.visibleField(method)
	if err != nil {
		f.state.Error = MessageGeneric
		f.state.ErrorKind = ErrorKindValidation
		f.send(eventInvalid)
		defer f.mu.Unlock()
		return f.state.clone()
	}
	identifier := f.state.Value(field.Name)
	if identifier == "" {
		f.state.Error = field.RequiredMessage
		f.state.ErrorKind = ErrorKindValidation
		f.send(eventInvalid)
		logging.Ctx(ctx).Debug().Str("method", string(method)).Str("field", string(field.Name)).Msg("submit rejected: identifier required")
		defer f.mu.Unlock()
		return f.state.clone()
	}
	f.send(eventValid)

	reqCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.mu.Unlock()

	recommendations, err := f.recommender.Recommend(reqCtx, method, identifier)

	f.mu.Lock()
	defer f.mu.Unlock()
	cancel()
	if generation != f.state.Generation {
		logging.Ctx(ctx).Debug().Uint64("generation", generation).Uint64("current", f.state.Generation).Msg("discarding superseded response")
		return f.state.clone()
	}
	f.cancel = nil

	if err != nil {
		f.state.Recommendations = nil
		f.state.Error, f.state.ErrorKind = describe(err)
		f.send(eventFailed)
		return f.state.clone()
	}

	f.state.Recommendations = append([]string(nil), recommendations...)
	f.state.Error = ""
	f.state.ErrorKind = ErrorKindNone
	f.send(eventSucceeded)
	return f.state.clone()
}

// Close cancels an in-flight request and stops the state machine.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.interp.Stop()
}

func (f *Form) send(event string) {
	f.interp.Send(statekit.Event{Type: statekit.EventType(event)})
	f.state.Phase = Phase(f.interp.State().Value)
}

// describe maps a recommender error onto the displayed message.
func describe(err error) (string, ErrorKind) {
	var statusErr *client.StatusError
	switch {
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message, ErrorKindServer
		}
		return MessageGeneric, ErrorKindServer
	case errors.Is(err, client.ErrTransport):
		return MessageNetwork, ErrorKindTransport
	default:
		return MessageGeneric, ErrorKindTransport
	}
}
