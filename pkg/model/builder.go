package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-recoform/pkg/visibility"
)

// Option mutates the default form model before it is returned.
type Option func(*FormModel)

// WithTitle overrides the card title.
func WithTitle(title string) Option {
	return func(m *FormModel) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			m.Title = trimmed
		}
	}
}

// WithNotice sets the optional notice markup shown above the form.
func WithNotice(notice string) Option {
	return func(m *FormModel) {
		m.Notice = strings.TrimSpace(notice)
	}
}

// WithIcons assigns inline SVG icons to selector options keyed by method
// value. Unknown keys are ignored.
func WithIcons(icons map[string]string) Option {
	return func(m *FormModel) {
		if len(icons) == 0 {
			return
		}
		for i := range m.Options {
			if icon, ok := icons[string(m.Options[i].Value)]; ok {
				m.Options[i].Icon = icon
			}
		}
	}
}

// DefaultFormModel returns the recommendation form: four methods, three
// identifier fields and the labels shown on every surface.
func DefaultFormModel(options ...Option) FormModel {
	m := FormModel{
		Title:       "AI-Powered Product Recommendations",
		MethodLabel: "Select Recommendation Method",
		Options: []MethodOption{
			{Value: MethodUserBased, Label: "User-Based CF", Glyph: "👤"},
			{Value: MethodItemBased, Label: "Item-Based CF", Glyph: "📦"},
			{Value: MethodCBF, Label: "Content-Based Filtering (CBF)", Glyph: "📑"},
			{Value: MethodSVD, Label: "SVD-Based CF", Glyph: "📊"},
		},
		Fields: []Field{
			{
				Name:            FieldUserID,
				Label:           "User ID",
				Placeholder:     "Enter User ID",
				VisibleWhen:     `method == "user_based" || method == "svd"`,
				RequiredMessage: "User ID is required",
			},
			{
				Name:            FieldItemID,
				Label:           "Item ID",
				Placeholder:     "Enter Item ID",
				VisibleWhen:     `method == "item_based"`,
				RequiredMessage: "Item ID is required",
			},
			{
				Name:            FieldProductID,
				Label:           "Product ID",
				Placeholder:     "Enter Product ID",
				VisibleWhen:     `method == "cbf"`,
				RequiredMessage: "Product ID is required",
			},
		},
		SubmitLabel:   "Get Recommendations",
		ResultHeading: "Recommended Products",
	}
	for _, opt := range options {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// VisibleField evaluates the visibility rules for method and returns the one
// field that should be shown. Zero or several visible fields is an error.
func (m FormModel) VisibleField(method Method, evaluator visibility.Evaluator) (Field, error) {
	if evaluator == nil {
		return Field{}, errors.New("model: visibility evaluator is required")
	}
	ctx := visibility.Context{Values: map[string]any{"method": string(method)}}

	var (
		match Field
		count int
	)
	for _, field := range m.Fields {
		visible, err := evaluator.Eval(string(field.Name), field.VisibleWhen, ctx)
		if err != nil {
			return Field{}, fmt.Errorf("model: field %q: %w", field.Name, err)
		}
		if visible {
			match = field
			count++
		}
	}

	switch count {
	case 1:
		return match, nil
	case 0:
		return Field{}, fmt.Errorf("model: no identifier field visible for method %q", method)
	default:
		return Field{}, fmt.Errorf("model: %d identifier fields visible for method %q", count, method)
	}
}

// Validate checks the model is usable: every supported method has a selector
// option and exactly one visible identifier field.
func (m FormModel) Validate(evaluator visibility.Evaluator) error {
	for _, method := range Methods() {
		if _, ok := m.Option(method); !ok {
			return fmt.Errorf("model: missing selector option for method %q", method)
		}
		if _, err := m.VisibleField(method, evaluator); err != nil {
			return err
		}
	}
	return nil
}
