// Package recoform is the top-level entry point: it re-exports the
// orchestrator so callers can build a form stack with one import.
package recoform

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-recoform/pkg/orchestrator"
	"github.com/goliatone/go-recoform/pkg/render"
	"github.com/goliatone/go-recoform/pkg/renderers/vanilla"
)

// Request aliases orchestrator.Request for one-shot submissions.
type Request = orchestrator.Request

// Result aliases orchestrator.Result.
type Result = orchestrator.Result

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// New builds an orchestrator with the embedded recommender contract, the
// HTTP client and the html, text and json renderers unless overridden.
func New(ctx context.Context, options ...orchestrator.Option) (*orchestrator.Orchestrator, error) {
	return orchestrator.New(ctx, options...)
}

// Recommend runs a single submission and renders it. A failed request is
// reported in Result.State rather than as an error.
func Recommend(ctx context.Context, req Request, options ...orchestrator.Option) (Result, error) {
	orch, err := orchestrator.New(ctx, options...)
	if err != nil {
		return Result{}, err
	}
	return orch.Generate(ctx, req)
}

// EmbeddedTemplates exposes the built-in page template so callers can copy
// and customise it for WithTemplatesDir.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// EmbeddedAssets exposes the stylesheet served under /assets/.
func EmbeddedAssets() fs.FS {
	return vanilla.AssetsFS()
}
