// Package vanilla renders the recommendation form as a single server
// rendered HTML page. It needs no client-side script beyond the one-line
// selector auto-submit.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/render"
	rendertemplate "github.com/goliatone/go-recoform/pkg/render/template"
	"github.com/goliatone/go-recoform/pkg/render/template/pongo"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk. The directory
// must contain templates/page.tmpl.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

type Renderer struct {
	templates rendertemplate.TemplateRenderer
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := pongo.New(cfg.templateFS,
			pongo.WithFilter("error_glyph", func(kind string) string { return ErrorGlyph(form.ErrorKind(kind)) }),
			pongo.WithFilter("sanitize_icon", SanitizeIcon),
			pongo.WithFilter("sanitize_notice", SanitizeNotice),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	out, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page": pageData(view),
		"actions": map[string]any{
			"method":     options.MethodAction,
			"submit":     options.SubmitAction,
			"stylesheet": options.StylesheetURL,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return out, nil
}

// pageData flattens the view into plain values so templates compare
// strings rather than named Go types.
func pageData(view render.View) map[string]any {
	options := make([]map[string]any, 0, len(view.Options))
	var icon string
	for _, opt := range view.Options {
		options = append(options, map[string]any{
			"value":    string(opt.Value),
			"label":    opt.Label,
			"glyph":    opt.Glyph,
			"selected": opt.Selected,
		})
		if opt.Selected {
			icon = opt.Icon
		}
	}
	return map[string]any{
		"title":        view.Title,
		"notice":       view.Notice,
		"method_label": view.MethodLabel,
		"icon":         icon,
		"options":      options,
		"field": map[string]any{
			"name":        string(view.Field.Name),
			"label":       view.Field.Label,
			"placeholder": view.Field.Placeholder,
			"value":       view.Field.Value,
		},
		"submit_label":    view.SubmitLabel,
		"result_heading":  view.ResultHeading,
		"recommendations": view.Recommendations,
		"error":           view.Error,
		"error_kind":      string(view.ErrorKind),
		"phase":           string(view.Phase),
	}
}

// ErrorGlyph marks server reported messages with a warning sign and every
// other failure with a cross.
func ErrorGlyph(kind form.ErrorKind) string {
	switch kind {
	case form.ErrorKindNone:
		return ""
	case form.ErrorKindServer:
		return "⚠️"
	default:
		return "❌"
	}
}
