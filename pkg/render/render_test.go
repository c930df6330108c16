package render_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/render"
)

type namedRenderer string

func (n namedRenderer) Name() string        { return string(n) }
func (n namedRenderer) ContentType() string { return "text/plain" }
func (n namedRenderer) Render(context.Context, render.View, render.RenderOptions) ([]byte, error) {
	return []byte(n), nil
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	registry, err := render.NewRegistryWith(namedRenderer("text"), namedRenderer("html"))
	if err != nil {
		t.Fatalf("NewRegistryWith: %v", err)
	}
	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if err := registry.Register(namedRenderer("text")); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if err := registry.Register(namedRenderer("")); err == nil {
		t.Fatal("expected empty name error")
	}
	if _, err := registry.Get("yaml"); err == nil || !strings.Contains(err.Error(), "html, text") {
		t.Fatalf("expected not found error listing names, got %v", err)
	}
	if !registry.Has("html") {
		t.Fatal("expected html renderer")
	}
}

func TestFromForm(t *testing.T) {
	t.Parallel()

	recommender := form.RecommenderFunc(func(context.Context, model.Method, string) ([]string, error) {
		return []string{"A", "B"}, nil
	})
	f, err := form.New(model.DefaultFormModel(), recommender, form.WithLogger(zerolog.New(io.Discard)), form.WithMethod(model.MethodItemBased))
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	t.Cleanup(f.Close)
	f.SetIdentifier("sku-9")
	f.Submit(context.Background())

	view := render.FromForm(f)
	want := render.FieldView{Name: model.FieldItemID, Label: "Item ID", Placeholder: "Enter Item ID", Value: "sku-9"}
	if diff := cmp.Diff(want, view.Field); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}
	if !view.HasRecommendations() || view.HasError() {
		t.Fatalf("unexpected panel state %+v", view)
	}

	var selected []model.Method
	for _, opt := range view.Options {
		if opt.Selected {
			selected = append(selected, opt.Value)
		}
	}
	if diff := cmp.Diff([]model.Method{model.MethodItemBased}, selected); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestNewViewCopiesRecommendations(t *testing.T) {
	t.Parallel()

	state := form.State{Method: model.MethodCBF, Recommendations: []string{"A"}}
	m := model.DefaultFormModel()
	field, _ := m.Field(model.FieldProductID)
	view := render.NewView(m, state, field)
	state.Recommendations[0] = "changed"
	if view.Recommendations[0] != "A" {
		t.Fatal("view shares the recommendations slice with the state")
	}
	if empty := render.NewView(m, form.State{}, field); empty.Recommendations == nil {
		t.Fatal("expected empty non-nil recommendations for JSON output")
	}
}
