// Package render defines the renderer contract shared by every surface and
// the immutable View they render.
package render

import (
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
)

// View is a render-ready snapshot of one form.
type View struct {
	Title           string         `json:"title"`
	Notice          string         `json:"notice,omitempty"`
	MethodLabel     string         `json:"method_label"`
	Method          model.Method   `json:"method"`
	Options         []OptionView   `json:"options"`
	Field           FieldView      `json:"field"`
	SubmitLabel     string         `json:"submit_label"`
	ResultHeading   string         `json:"result_heading"`
	Recommendations []string       `json:"recommendations"`
	Error           string         `json:"error,omitempty"`
	ErrorKind       form.ErrorKind `json:"error_kind,omitempty"`
	Phase           form.Phase     `json:"phase"`
}

// OptionView is one selector entry.
type OptionView struct {
	Value    model.Method `json:"value"`
	Label    string       `json:"label"`
	Glyph    string       `json:"glyph,omitempty"`
	Icon     string       `json:"icon,omitempty"`
	Selected bool         `json:"selected"`
}

// FieldView is the identifier input currently shown.
type FieldView struct {
	Name        model.FieldName `json:"name"`
	Label       string          `json:"label"`
	Placeholder string          `json:"placeholder"`
	Value       string          `json:"value"`
}

// HasError reports whether the error line should be shown.
func (v View) HasError() bool {
	return v.Error != ""
}

// HasRecommendations reports whether the result list should be shown.
func (v View) HasRecommendations() bool {
	return len(v.Recommendations) > 0
}

// NewView combines the static model, the current state and the field
// visible for that state.
func NewView(m model.FormModel, state form.State, field model.Field) View {
	view := View{
		Title:         m.Title,
		Notice:        m.Notice,
		MethodLabel:   m.MethodLabel,
		Method:        state.Method,
		SubmitLabel:   m.SubmitLabel,
		ResultHeading: m.ResultHeading,
		Error:         state.Error,
		ErrorKind:     state.ErrorKind,
		Phase:         state.Phase,
		Field: FieldView{
			Name:        field.Name,
			Label:       field.Label,
			Placeholder: field.Placeholder,
			Value:       state.Value(field.Name),
		},
		Recommendations: append([]string{}, state.Recommendations...),
	}
	view.Options = make([]OptionView, 0, len(m.Options))
	for _, opt := range m.Options {
		view.Options = append(view.Options, OptionView{
			Value:    opt.Value,
			Label:    opt.Label,
			Glyph:    opt.Glyph,
			Icon:     opt.Icon,
			Selected: opt.Value == state.Method,
		})
	}
	return view
}

// FromForm snapshots f.
func FromForm(f *form.Form) View {
	state, field := f.Current()
	return NewView(f.Model(), state, field)
}
