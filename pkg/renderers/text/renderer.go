// Package text renders the form's result panel for terminals, styled with
// lipgloss.
package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/render"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	colorError   = lipgloss.AdaptiveColor{Light: "#d20f39", Dark: "#f38ba8"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6c6f85", Dark: "#6c7086"}
)

// Styles groups the lipgloss styles used for each line kind.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Heading lipgloss.Style
	Item    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the colored styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Label:   lipgloss.NewStyle().Foreground(colorMuted),
		Heading: lipgloss.NewStyle().Bold(true),
		Item:    lipgloss.NewStyle().PaddingLeft(2),
		Warning: lipgloss.NewStyle().Bold(true).Foreground(colorWarning),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(colorError),
	}
}

// PlainStyles returns styles that only keep layout (indentation).
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:   plain,
		Label:   plain,
		Heading: plain,
		Item:    lipgloss.NewStyle().PaddingLeft(2),
		Warning: plain,
		Error:   plain,
	}
}

type Option func(*Renderer)

// WithStyles replaces the styles.
func WithStyles(styles Styles) Option {
	return func(r *Renderer) {
		r.styles = styles
	}
}

// WithPlain disables colors and emphasis.
func WithPlain() Option {
	return WithStyles(PlainStyles())
}

// WithHeader toggles the title and input summary lines printed above the
// result panel.
func WithHeader(enabled bool) Option {
	return func(r *Renderer) {
		r.header = enabled
	}
}

type Renderer struct {
	styles Styles
	header bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{styles: DefaultStyles(), header: true}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, view render.View, _ render.RenderOptions) ([]byte, error) {
	var b strings.Builder
	if r.header {
		b.WriteString(r.styles.Title.Render(view.Title))
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render("Method:"), selectedLabel(view))
		fmt.Fprintf(&b, "%s %s\n", r.styles.Label.Render(view.Field.Label+":"), view.Field.Value)
	}
	b.WriteString(r.Panel(view))
	return []byte(b.String()), nil
}

// Panel renders only the result area: the error line, then the list.
func (r *Renderer) Panel(view render.View) string {
	var b strings.Builder
	if view.HasError() {
		style := r.styles.Error
		glyph := "✗"
		if view.ErrorKind == form.ErrorKindServer {
			style = r.styles.Warning
			glyph = "!"
		}
		b.WriteString(style.Render(glyph + " " + view.Error))
		b.WriteByte('\n')
	}
	if view.HasRecommendations() {
		b.WriteString(r.styles.Heading.Render(view.ResultHeading))
		b.WriteByte('\n')
		for i, item := range view.Recommendations {
			b.WriteString(r.styles.Item.Render(fmt.Sprintf("%d. %s", i+1, item)))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func selectedLabel(view render.View) string {
	for _, opt := range view.Options {
		if opt.Selected {
			return opt.Label
		}
	}
	return string(view.Method)
}
