// Package pongo renders the page templates of an fs.FS with pongo2. Every
// template is parsed when the engine is built, so a broken template
// directory is reported at startup instead of on the first request.
package pongo

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goccy/go-json"

	"github.com/goliatone/go-recoform/pkg/render/template"
)

// Ext is the extension of the files the engine loads.
const Ext = ".tmpl"

// TextFilter transforms a rendered value. Filters see the value's string
// form and return the replacement text.
type TextFilter func(string) string

// pongo2 keeps filters in a process global table.
var filtersMu sync.Mutex

type Option func(*Engine)

// WithFilter makes fn available to templates as name. The first filter
// registered under a name wins for the whole process.
func WithFilter(name string, fn TextFilter) Option {
	return func(e *Engine) {
		if name = strings.TrimSpace(name); name != "" && fn != nil {
			e.filters[name] = fn
		}
	}
}

// WithGlobals seeds values visible to every template.
func WithGlobals(data map[string]any) Option {
	return func(e *Engine) {
		for key, value := range data {
			e.set.Globals[strings.TrimSpace(key)] = value
		}
	}
}

// Engine holds the parsed templates of one file system.
type Engine struct {
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
	filters   map[string]TextFilter
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New parses every *.tmpl file in files.
func New(files fs.FS, options ...Option) (*Engine, error) {
	if files == nil {
		return nil, errors.New("pongo: template fs is required")
	}
	e := &Engine{
		set:       pongo2.NewSet("recoform", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
		filters:   map[string]TextFilter{"trim": strings.TrimSpace},
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	e.registerFilters()

	err := fs.WalkDir(files, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(name) != Ext {
			return nil
		}
		tmpl, err := e.set.FromFile(name)
		if err != nil {
			return fmt.Errorf("pongo: parse %s: %w", name, err)
		}
		e.templates[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(e.templates) == 0 {
		return nil, fmt.Errorf("pongo: no %s templates found", Ext)
	}
	return e, nil
}

// Names lists the loaded templates.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RenderTemplate executes the named template. The extension may be omitted.
func (e *Engine) RenderTemplate(name string, data any) ([]byte, error) {
	if !strings.HasSuffix(name, Ext) {
		name += Ext
	}
	tmpl, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("pongo: template %q not found (have %s)", name, strings.Join(e.Names(), ", "))
	}
	ctx, err := toContext(data)
	if err != nil {
		return nil, fmt.Errorf("pongo: convert data for %s: %w", name, err)
	}
	out, err := tmpl.ExecuteBytes(ctx)
	if err != nil {
		return nil, fmt.Errorf("pongo: execute %s: %w", name, err)
	}
	return out, nil
}

func (e *Engine) registerFilters() {
	filtersMu.Lock()
	defer filtersMu.Unlock()
	for name, fn := range e.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		_ = pongo2.RegisterFilter(name, func(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
			if in.IsNil() {
				return pongo2.AsValue(fn("")), nil
			}
			return pongo2.AsValue(fn(in.String())), nil
		})
	}
}

// toContext passes maps through and sends structs through a JSON round
// trip, so templates see the same keys as the JSON API.
func toContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("data must encode to a JSON object: %w", err)
	}
	return out, nil
}
