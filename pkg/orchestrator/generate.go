package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
)

// Request describes a one-shot submission.
type Request struct {
	// Method selects the recommendation method; empty means the default.
	Method model.Method
	// Identifier is the value typed into the visible field.
	Identifier string
	// Renderer names the output renderer; empty means the default.
	Renderer string
}

// Result is the rendered outcome of a one-shot submission.
type Result struct {
	Output      []byte
	ContentType string
	State       form.State
}

// Generate runs select, type, submit and render on a throwaway form. A
// submission that ends in an error state is still rendered; callers inspect
// Result.State.Error.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f, err := o.NewForm()
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: %w", err)
	}
	defer f.Close()

	if req.Method != "" {
		if err := f.SelectMethod(req.Method); err != nil {
			return Result{}, fmt.Errorf("orchestrator: %w", err)
		}
	}
	f.SetIdentifier(req.Identifier)
	state := f.Submit(ctx)

	output, renderer, err := o.Render(ctx, f, req.Renderer)
	if err != nil {
		return Result{}, err
	}
	return Result{Output: output, ContentType: renderer.ContentType(), State: state}, nil
}
