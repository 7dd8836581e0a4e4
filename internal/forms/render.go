package forms

import "backoffice-console/internal/registry"

type Control string

const (
	ControlInput       Control = "input"
	ControlNumber      Control = "number"
	ControlDatePicker  Control = "date"
	ControlSelect      Control = "select"
	ControlMultiSelect Control = "multiselect"
)

func controlFor(kind registry.FieldKind) Control {
	switch kind {
	case registry.KindNumber:
		return ControlNumber
	case registry.KindDate:
		return ControlDatePicker
	case registry.KindSelect:
		return ControlSelect
	case registry.KindMultiSelect:
		return ControlMultiSelect
	}
	return ControlInput
}

// Widget - готовое к отрисовке описание одного поля.
type Widget struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Control     Control           `json:"control"`
	Required    bool              `json:"required"`
	Pattern     string            `json:"pattern,omitempty"`
	Min         *float64          `json:"min,omitempty"`
	Max         *float64          `json:"max,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`
	Value       any               `json:"value"`
	Options     []registry.Option `json:"options,omitempty"`
	Disabled    bool              `json:"disabled"`
	Loading     bool              `json:"loading"`
	Error       string            `json:"error,omitempty"`
}

type RenderedForm struct {
	ID       string   `json:"id"`
	Resource string   `json:"resource"`
	Title    string   `json:"title"`
	Mode     string   `json:"mode"`
	RecordID string   `json:"record_id,omitempty"`
	Widgets  []Widget `json:"widgets"`
}

// Render строит виджет поля. Зависимый выбор без значения родителя заблокирован.
func Render(desc *registry.ResourceDescriptor, f *Form, field registry.FieldDescriptor) Widget {
	w := Widget{
		Name:        field.Name,
		Label:       field.Label,
		Control:     controlFor(field.Kind),
		Required:    field.Required,
		Pattern:     field.Pattern,
		Min:         field.Min,
		Max:         field.Max,
		Placeholder: field.Placeholder,
		Value:       f.Values[field.Name],
		Disabled:    field.ReadOnly,
		Loading:     f.Pending[field.Name],
		Error:       f.Errors[field.Name],
	}
	if w.Label == "" {
		w.Label = field.Name
	}
	if w.Value == nil {
		w.Value = emptyValue(field)
	}

	if field.Kind.IsSelect() {
		switch {
		case len(field.StaticOptions) > 0:
			w.Options = field.StaticOptions
		default:
			w.Options = f.Options[field.Name]
		}
		if field.DependsOn != "" && f.ParentValue(desc, field.Name) == "" {
			w.Disabled = true
			w.Options = nil
		}
		if w.Options == nil {
			w.Options = []registry.Option{}
		}
	}
	return w
}

func RenderForm(desc *registry.ResourceDescriptor, f *Form) RenderedForm {
	out := RenderedForm{
		ID:       f.ID,
		Resource: desc.Key,
		Title:    "Add " + desc.Label,
		Mode:     "create",
		RecordID: f.RecordID,
		Widgets:  make([]Widget, 0, len(desc.Fields)),
	}
	if f.IsEdit() {
		out.Title = "Edit " + desc.Label
		out.Mode = "edit"
	}
	for _, field := range desc.Fields {
		out.Widgets = append(out.Widgets, Render(desc, f, field))
	}
	return out
}
