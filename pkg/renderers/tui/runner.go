// Package tui is the interactive terminal rendition of the recommendation
// form. A Runner loops over method selection, identifier input and submit,
// printing the result panel after every submit.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/render"
	"github.com/goliatone/go-recoform/pkg/renderers/text"
)

const continuePrompt = "Get more recommendations?"

// Option configures the Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver used by the runner.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTextRenderer overrides the result panel renderer.
func WithTextRenderer(renderer *text.Renderer) Option {
	return func(r *Runner) {
		if renderer != nil {
			r.panel = renderer
		}
	}
}

// WithOnce stops after the first submit instead of asking to continue.
func WithOnce() Option {
	return func(r *Runner) {
		r.once = true
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// Runner drives a form through prompts.
type Runner struct {
	form   *form.Form
	driver PromptDriver
	panel  *text.Renderer
	once   bool
	logger zerolog.Logger
}

// New constructs a Runner. Without WithPromptDriver the survey driver
// writing to stdout is used.
func New(f *form.Form, options ...Option) (*Runner, error) {
	if f == nil {
		return nil, errors.New("tui: form is required")
	}
	r := &Runner{
		form:   f,
		panel:  text.New(text.WithHeader(false)),
		logger: logging.WithComponent("tui"),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r, nil
}

// Run loops until the user declines to continue. Aborting a prompt with
// Ctrl-C ends the loop without an error.
func (r *Runner) Run(ctx context.Context) error {
	for {
		err := r.step(ctx)
		if errors.Is(err, ErrAborted) {
			r.logger.Debug().Msg("prompt aborted")
			return nil
		}
		if err != nil {
			return err
		}
		if r.once {
			return nil
		}

		again, err := r.driver.Confirm(ctx, ConfirmConfig{Message: continuePrompt, Default: true})
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
	}
}

func (r *Runner) step(ctx context.Context) error {
	m := r.form.Model()
	current := r.form.Snapshot().Method

	labels := make([]string, 0, len(m.Options))
	defaultIndex := 0
	for i, opt := range m.Options {
		label := opt.Label
		if opt.Glyph != "" {
			label = opt.Glyph + " " + label
		}
		labels = append(labels, label)
		if opt.Value == current {
			defaultIndex = i
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{
		Message:      m.MethodLabel,
		Options:      labels,
		DefaultIndex: defaultIndex,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(m.Options) {
		return fmt.Errorf("tui: select returned out of range index %d", idx)
	}
	if err := r.form.SelectMethod(m.Options[idx].Value); err != nil {
		return err
	}

	// The bound value is only a hint; an empty answer must reach validation.
	field := r.form.Field()
	help := field.Placeholder
	if last := r.form.Identifier(); last != "" {
		help = fmt.Sprintf("%s (last entered: %s)", help, last)
	}
	value, err := r.driver.Input(ctx, InputConfig{
		Message: field.Label,
		Help:    help,
	})
	if err != nil {
		return err
	}
	r.form.SetIdentifier(value)

	r.form.Submit(ctx)
	return r.print(ctx)
}

func (r *Runner) print(ctx context.Context) error {
	view := render.FromForm(r.form)
	out, err := r.panel.Render(ctx, view, render.RenderOptions{})
	if err != nil {
		return err
	}
	if len(out) == 0 {
		return nil
	}
	return r.driver.Info(ctx, string(out))
}
