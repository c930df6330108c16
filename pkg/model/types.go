package model

// FieldName identifies one of the identifier inputs. The value doubles as the
// HTML input name and the key used in rendered state.
type FieldName string

const (
	FieldUserID    FieldName = "user_id"
	FieldItemID    FieldName = "item_id"
	FieldProductID FieldName = "product_id"
)

// MethodOption is a single entry of the method selector.
type MethodOption struct {
	Value Method `json:"value"`
	Label string `json:"label"`
	// Icon holds optional inline SVG markup. Renderers sanitise it before use.
	Icon string `json:"icon,omitempty"`
	// Glyph is a short text decoration used by text renderers.
	Glyph string `json:"glyph,omitempty"`
}

// Field models one identifier input. VisibleWhen is a visibility rule
// evaluated with the selected method bound to the "method" identifier.
type Field struct {
	Name            FieldName `json:"name"`
	Label           string    `json:"label"`
	Placeholder     string    `json:"placeholder"`
	VisibleWhen     string    `json:"visibleWhen"`
	RequiredMessage string    `json:"requiredMessage"`
}

// FormModel is the top-level description renderers and the form consume.
type FormModel struct {
	Title         string         `json:"title"`
	MethodLabel   string         `json:"methodLabel"`
	Options       []MethodOption `json:"options"`
	Fields        []Field        `json:"fields"`
	SubmitLabel   string         `json:"submitLabel"`
	ResultHeading string         `json:"resultHeading"`
	// Notice is optional HTML shown above the form. Renderers sanitise it.
	Notice string `json:"notice,omitempty"`
}

// Field returns the field registered under name.
func (m FormModel) Field(name FieldName) (Field, bool) {
	for _, field := range m.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Option returns the selector option for method.
func (m FormModel) Option(method Method) (MethodOption, bool) {
	for _, option := range m.Options {
		if option.Value == method {
			return option, true
		}
	}
	return MethodOption{}, false
}
