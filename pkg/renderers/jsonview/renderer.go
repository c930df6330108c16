// Package jsonview renders a form view as JSON. The server uses it for
// /api/state and the CLI for --output json.
package jsonview

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-recoform/pkg/render"
)

type Option func(*Renderer)

// WithIndent pretty prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

type Renderer struct {
	indent string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "json"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if r.indent != "" {
		out, err = json.MarshalIndent(view, "", r.indent)
	} else {
		out, err = json.Marshal(view)
	}
	if err != nil {
		return nil, fmt.Errorf("jsonview: encode view: %w", err)
	}
	return append(out, '\n'), nil
}
