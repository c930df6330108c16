package form

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

const (
	stateIdle       = "idle"
	stateValidating = "validating"
	stateRequesting = "requesting"
)

const (
	eventSubmit    = "SUBMIT"
	eventValid     = "VALID"
	eventInvalid   = "INVALID"
	eventSucceeded = "SUCCEEDED"
	eventFailed    = "FAILED"
)

type machineContext struct{}

// buildMachine wires the submit lifecycle:
//
//	idle -SUBMIT-> validating -INVALID-> idle
//	validating -VALID-> requesting -SUCCEEDED|FAILED-> idle
//	requesting -SUBMIT-> validating
func buildMachine() (*statekit.Interpreter[machineContext], error) {
	machine, err := statekit.NewMachine[machineContext]("recommendation-form").
		WithInitial(stateIdle).
		WithContext(machineContext{}).
		State(stateIdle).
		On(eventSubmit).Target(stateValidating).Done().
		State(stateValidating).
		On(eventInvalid).Target(stateIdle).
		On(eventValid).Target(stateRequesting).Done().
		State(stateRequesting).
		On(eventSucceeded).Target(stateIdle).
		On(eventFailed).Target(stateIdle).
		On(eventSubmit).Target(stateValidating).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("form: build state machine: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return interp, nil
}
