package vanilla_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
	"github.com/goliatone/go-recoform/pkg/render"
	"github.com/goliatone/go-recoform/pkg/renderers/vanilla"
)

func viewFor(t *testing.T, m model.FormModel, state form.State) render.View {
	t.Helper()
	var name model.FieldName
	switch state.Method {
	case model.MethodItemBased:
		name = model.FieldItemID
	case model.MethodCBF:
		name = model.FieldProductID
	default:
		name = model.FieldUserID
	}
	field, ok := m.Field(name)
	if !ok {
		t.Fatalf("field %q missing", name)
	}
	return render.NewView(m, state, field)
}

func renderPage(t *testing.T, view render.View) string {
	t.Helper()
	renderer, err := vanilla.New()
	if err != nil {
		t.Fatalf("vanilla.New: %v", err)
	}
	out, err := renderer.Render(context.Background(), view, render.DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return string(out)
}

func TestRenderInitialPage(t *testing.T) {
	t.Parallel()

	html := renderPage(t, viewFor(t, model.DefaultFormModel(), form.State{Method: model.MethodUserBased, Phase: form.PhaseIdle}))

	for _, want := range []string{
		"<h1 class=\"rf-title\">AI-Powered Product Recommendations</h1>",
		"Select Recommendation Method",
		`<option value="user_based" selected>`,
		`<option value="cbf">`,
		"Content-Based Filtering (CBF)",
		`name="user_id"`,
		`placeholder="Enter User ID"`,
		"Get Recommendations",
		`action="/recommend"`,
		`href="/assets/recoform.css"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
	for _, unwanted := range []string{"rf-error", "Recommended Products"} {
		if strings.Contains(html, unwanted) {
			t.Fatalf("did not expect %q in initial page", unwanted)
		}
	}
}

func TestRenderResultsAndError(t *testing.T) {
	t.Parallel()

	state := form.State{
		Method:          model.MethodCBF,
		ProductID:       `p"1`,
		Recommendations: []string{"Lamp", "<b>Desk</b>"},
		Error:           "Product ID is required",
		ErrorKind:       form.ErrorKindValidation,
	}
	html := renderPage(t, viewFor(t, model.DefaultFormModel(), state))

	for _, want := range []string{
		"Recommended Products",
		"<li>Lamp</li>",
		"<li>&lt;b&gt;Desk&lt;/b&gt;</li>",
		"❌ Product ID is required",
		`name="product_id"`,
		`value="p&quot;1"`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected page to contain %q\n%s", want, html)
		}
	}
	if strings.Index(html, "Lamp") > strings.Index(html, "Desk") {
		t.Fatal("recommendations rendered out of order")
	}
}

func TestRenderServerErrorGlyph(t *testing.T) {
	t.Parallel()

	state := form.State{Method: model.MethodItemBased, Error: "item not found", ErrorKind: form.ErrorKindServer}
	html := renderPage(t, viewFor(t, model.DefaultFormModel(), state))
	if !strings.Contains(html, "⚠️ item not found") {
		t.Fatalf("expected warning glyph\n%s", html)
	}
}

func TestRenderSanitizesIconsAndNotice(t *testing.T) {
	t.Parallel()

	m := model.DefaultFormModel(
		model.WithNotice(`<strong>Beta</strong><script>alert(1)</script>`),
		model.WithIcons(map[string]string{
			"user_based": `<svg viewBox="0 0 10 10" onload="alert(1)"><path d="M0 0L10 10"/><script>x()</script></svg>`,
		}),
	)
	html := renderPage(t, viewFor(t, m, form.State{Method: model.MethodUserBased}))

	if !strings.Contains(html, "<strong>Beta</strong>") {
		t.Fatalf("notice markup missing\n%s", html)
	}
	if !strings.Contains(html, `<path d="M0 0L10 10">`) && !strings.Contains(html, `<path d="M0 0L10 10"/>`) {
		t.Fatalf("icon path missing\n%s", html)
	}
	for _, unwanted := range []string{"<script>", "onload", "x()"} {
		if strings.Contains(html, unwanted) {
			t.Fatalf("unsanitised markup %q leaked\n%s", unwanted, html)
		}
	}
}

func TestSanitizeIconEmpty(t *testing.T) {
	t.Parallel()

	if got := vanilla.SanitizeIcon("  "); got != "" {
		t.Fatalf("SanitizeIcon(blank) = %q", got)
	}
	if got := vanilla.SanitizeIcon(`<img src="x" onerror="y">`); got != "" {
		t.Fatalf("expected non svg markup dropped, got %q", got)
	}
}

func TestCustomTemplatesFS(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"templates/page.tmpl": {Data: []byte(`{{ page.title }}|{{ page.field.placeholder }}|{{ actions.submit }}`)},
	}
	renderer, err := vanilla.New(vanilla.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("vanilla.New: %v", err)
	}
	view := viewFor(t, model.DefaultFormModel(), form.State{Method: model.MethodSVD})
	out, err := renderer.Render(context.Background(), view, render.RenderOptions{SubmitAction: "/go"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "AI-Powered Product Recommendations|Enter User ID|/go" {
		t.Fatalf("rendered %q", out)
	}
}

func TestBrokenTemplatesFailAtConstruction(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"templates/page.tmpl": {Data: []byte(`{% for %}`)},
	}
	if _, err := vanilla.New(vanilla.WithTemplatesFS(files)); err == nil || !strings.Contains(err.Error(), "templates/page.tmpl") {
		t.Fatalf("expected construction error naming the template, got %v", err)
	}
}

func TestCustomTemplatesUseFilters(t *testing.T) {
	t.Parallel()

	files := fstest.MapFS{
		"templates/page.tmpl": {Data: []byte(`{{ page.error_kind|error_glyph }}|{{ page.notice|sanitize_notice|safe }}`)},
	}
	renderer, err := vanilla.New(vanilla.WithTemplatesFS(files))
	if err != nil {
		t.Fatalf("vanilla.New: %v", err)
	}
	m := model.DefaultFormModel(model.WithNotice(`<em>hi</em><script>x</script>`))
	view := viewFor(t, m, form.State{Method: model.MethodSVD, Error: "boom", ErrorKind: form.ErrorKindServer})
	out, err := renderer.Render(context.Background(), view, render.DefaultOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(out) != "⚠️|<em>hi</em>" {
		t.Fatalf("rendered %q", out)
	}
}

func TestAssetsFS(t *testing.T) {
	t.Parallel()

	data, err := fs.ReadFile(vanilla.AssetsFS(), vanilla.StylesheetName)
	if err != nil {
		t.Fatalf("read stylesheet: %v", err)
	}
	if !strings.Contains(string(data), ".rf-card") {
		t.Fatal("stylesheet missing card rules")
	}
}
