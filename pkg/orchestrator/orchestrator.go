package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/internal/logging"
	"github.com/goliatone/go-recoform/pkg/client"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/openapi"
	"github.com/goliatone/go-recoform/pkg/render"
	"github.com/goliatone/go-recoform/pkg/renderers/jsonview"
	"github.com/goliatone/go-recoform/pkg/renderers/text"
	"github.com/goliatone/go-recoform/pkg/renderers/vanilla"
	"github.com/goliatone/go-recoform/pkg/visibility"
	"github.com/goliatone/go-recoform/pkg/visibility/expr"
)

const defaultRendererName = "html"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDocument replaces the embedded recommender contract.
func WithDocument(doc openapi.Document) Option {
	return func(o *Orchestrator) {
		o.document = &doc
	}
}

// WithCatalog injects an already parsed catalog; it wins over WithDocument.
func WithCatalog(catalog *openapi.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = catalog
	}
}

// WithClientConfig sets the recommender client configuration.
func WithClientConfig(cfg client.Config) Option {
	return func(o *Orchestrator) {
		o.clientConfig = cfg
	}
}

// WithClientOptions forwards options to client.New.
func WithClientOptions(opts ...client.Option) Option {
	return func(o *Orchestrator) {
		o.clientOptions = append(o.clientOptions, opts...)
	}
}

// WithRecommender bypasses the HTTP client entirely.
func WithRecommender(recommender form.Recommender) Option {
	return func(o *Orchestrator) {
		o.recommender = recommender
	}
}

// WithModelOptions customises the form model (title, notice, icons).
func WithModelOptions(opts ...model.Option) Option {
	return func(o *Orchestrator) {
		o.modelOptions = append(o.modelOptions, opts...)
	}
}

// WithEvaluator swaps the visibility rule evaluator.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(o *Orchestrator) {
		o.evaluator = evaluator
	}
}

// WithRegistry injects a renderer registry instead of the built-in one.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits one.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithRenderOptions overrides the actions and stylesheet handed to renderers.
func WithRenderOptions(options render.RenderOptions) Option {
	return func(o *Orchestrator) {
		o.renderOptions = options
	}
}

// WithTemplatesDir makes the built-in HTML renderer load templates from disk.
func WithTemplatesDir(dir string) Option {
	return func(o *Orchestrator) {
		o.templatesDir = dir
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
		o.loggerSet = true
	}
}

// Orchestrator coordinates contract, client, model and renderers. It applies
// the built-in implementations for anything not injected.
type Orchestrator struct {
	document        *openapi.Document
	catalog         *openapi.Catalog
	clientConfig    client.Config
	clientOptions   []client.Option
	client          *client.Client
	recommender     form.Recommender
	modelOptions    []model.Option
	model           model.FormModel
	evaluator       visibility.Evaluator
	registry        *render.Registry
	defaultRenderer string
	renderOptions   render.RenderOptions
	templatesDir    string
	logger          zerolog.Logger
	loggerSet       bool
}

// New applies options and builds every missing dependency. The context bounds
// contract validation.
func New(ctx context.Context, options ...Option) (*Orchestrator, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	o := &Orchestrator{
		clientConfig:    client.DefaultConfig(),
		defaultRenderer: defaultRendererName,
		renderOptions:   render.DefaultOptions(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.applyDefaults(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (o *Orchestrator) applyDefaults(ctx context.Context) error {
	if !o.loggerSet {
		o.logger = logging.WithComponent("orchestrator")
	}
	if o.evaluator == nil {
		o.evaluator = expr.New()
	}

	o.model = model.DefaultFormModel(o.modelOptions...)
	if err := o.model.Validate(o.evaluator); err != nil {
		return fmt.Errorf("orchestrator: form model: %w", err)
	}

	if o.catalog == nil {
		catalog, err := o.resolveCatalog(ctx)
		if err != nil {
			return err
		}
		o.catalog = catalog
	}

	if o.recommender == nil {
		opts := append([]client.Option{client.WithCatalog(o.catalog)}, o.clientOptions...)
		c, err := client.New(o.clientConfig, opts...)
		if err != nil {
			return fmt.Errorf("orchestrator: client: %w", err)
		}
		o.client = c
		o.recommender = c
	}

	if o.registry == nil {
		registry, err := o.defaultRegistry()
		if err != nil {
			return err
		}
		o.registry = registry
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	return nil
}

func (o *Orchestrator) resolveCatalog(ctx context.Context) (*openapi.Catalog, error) {
	if o.document == nil {
		catalog, err := openapi.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("orchestrator: contract: %w", err)
		}
		return catalog, nil
	}
	catalog, err := openapi.ParseCatalog(ctx, *o.document)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: contract %s: %w", o.document.Location(), err)
	}
	o.logger.Debug().Str("contract", o.document.Location()).Msg("loaded recommender contract")
	return catalog, nil
}

func (o *Orchestrator) defaultRegistry() (*render.Registry, error) {
	var htmlOpts []vanilla.Option
	if o.templatesDir != "" {
		htmlOpts = append(htmlOpts, vanilla.WithTemplatesDir(o.templatesDir))
	}
	html, err := vanilla.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: html renderer: %w", err)
	}
	registry, err := render.NewRegistryWith(html, text.New(), jsonview.New(jsonview.WithIndent("  ")))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: registry: %w", err)
	}
	return registry, nil
}

// Catalog returns the resolved endpoint catalog.
func (o *Orchestrator) Catalog() *openapi.Catalog {
	return o.catalog
}

// Model returns the form model shared by every form.
func (o *Orchestrator) Model() model.FormModel {
	return o.model
}

// Client returns the HTTP client, or nil when a recommender was injected.
func (o *Orchestrator) Client() *client.Client {
	return o.client
}

// Registry returns the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// RenderOptions returns the options handed to renderers.
func (o *Orchestrator) RenderOptions() render.RenderOptions {
	return o.renderOptions
}

// NewForm creates an independent form bound to the shared recommender.
// Caller options are applied after the orchestrator's.
func (o *Orchestrator) NewForm(opts ...form.Option) (*form.Form, error) {
	base := []form.Option{
		form.WithEvaluator(o.evaluator),
		form.WithLogger(logging.WithComponent("form")),
	}
	return form.New(o.model, o.recommender, append(base, opts...)...)
}

// Renderer resolves a renderer by name; an empty name picks the default.
func (o *Orchestrator) Renderer(name string) (render.Renderer, error) {
	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.registry.Get(target)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

// Render renders the form's current state with the named renderer.
func (o *Orchestrator) Render(ctx context.Context, f *form.Form, rendererName string) ([]byte, render.Renderer, error) {
	renderer, err := o.Renderer(rendererName)
	if err != nil {
		return nil, nil, err
	}
	output, err := renderer.Render(ctx, render.FromForm(f), o.renderOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: render %s: %w", renderer.Name(), err)
	}
	return output, renderer, nil
}
