package forms

import (
	"fmt"
	"math"
	"reflect"
	"strings"

	"backoffice-console/internal/registry"
	apperrors "backoffice-console/pkg/errors"

	"github.com/google/uuid"
)

// Form - один экземпляр формы добавления/редактирования. Живёт, пока открыт экран;
// кэш вариантов принадлежит экземпляру и не переходит в другие формы.
type Form struct {
	ID          string                       `json:"id"`
	ResourceKey string                       `json:"resource"`
	RecordID    string                       `json:"record_id,omitempty"`
	Values      map[string]any               `json:"values"`
	Errors      map[string]string            `json:"errors,omitempty"`
	Generations map[string]uint64            `json:"generations"`
	Options     map[string][]registry.Option `json:"options"`
	// OptionsFor - значение родителя, для которого загружены варианты зависимого поля.
	OptionsFor map[string]string `json:"options_for"`
	Pending    map[string]bool   `json:"pending"`
}

// FetchTicket выдаётся перед загрузкой вариантов. Результат применяется, только если
// поколение поля не изменилось за время запроса.
type FetchTicket struct {
	FormID      string `json:"form_id"`
	Field       string `json:"field"`
	Generation  uint64 `json:"generation"`
	ParentValue string `json:"parent_value,omitempty"`
	Endpoint    string `json:"endpoint"`
}

// NewForm открывает форму добавления (record == nil) или редактирования.
func NewForm(desc *registry.ResourceDescriptor, record map[string]any) *Form {
	f := &Form{
		ID:          uuid.NewString(),
		ResourceKey: desc.Key,
		Values:      make(map[string]any, len(desc.Fields)),
		Errors:      make(map[string]string),
		Generations: make(map[string]uint64),
		Options:     make(map[string][]registry.Option),
		OptionsFor:  make(map[string]string),
		Pending:     make(map[string]bool),
	}
	if record != nil {
		f.RecordID = registry.RecordID(record)
		for k, v := range desc.Record(record) {
			f.Values[k] = v
		}
	}
	for _, field := range desc.Fields {
		if _, ok := f.Values[field.Name]; !ok {
			f.Values[field.Name] = emptyValue(field)
		}
	}
	return f
}

func emptyValue(field registry.FieldDescriptor) any {
	if field.Kind == registry.KindMultiSelect {
		return []any{}
	}
	return nil
}

// IsEdit - форма открыта для существующей записи.
func (f *Form) IsEdit() bool { return f.RecordID != "" }

func (f *Form) ensureMaps() {
	if f.Values == nil {
		f.Values = make(map[string]any)
	}
	if f.Errors == nil {
		f.Errors = make(map[string]string)
	}
	if f.Generations == nil {
		f.Generations = make(map[string]uint64)
	}
	if f.Options == nil {
		f.Options = make(map[string][]registry.Option)
	}
	if f.OptionsFor == nil {
		f.OptionsFor = make(map[string]string)
	}
	if f.Pending == nil {
		f.Pending = make(map[string]bool)
	}
}

// Set записывает значение поля с приведением по виду. Числа зажимаются в [min,max]
// сразу при вводе. Если значение изменилось, зависимые поля очищаются и их кэш сбрасывается.
// Ошибка приведения остаётся на поле и не трогает остальные значения.
func (f *Form) Set(desc *registry.ResourceDescriptor, name string, raw any) error {
	f.ensureMaps()

	field, ok := desc.Field(name)
	if !ok {
		return &apperrors.ValidationError{Fields: map[string]string{name: "неизвестное поле"}}
	}
	if field.ReadOnly {
		return &apperrors.ValidationError{Fields: map[string]string{name: "поле только для чтения"}}
	}

	value, err := coerce(field, raw)
	delete(f.Errors, name)
	if err != nil {
		f.Errors[name] = err.Error()
		value = emptyValue(field)
	}

	previous := f.Values[name]
	f.Values[name] = value
	if !sameValue(previous, value) {
		f.invalidateDependents(desc, name)
	}

	if err != nil {
		return &apperrors.ValidationError{Fields: map[string]string{name: err.Error()}}
	}
	return nil
}

// invalidateDependents очищает всю цепочку зависимых полей ниже parent.
func (f *Form) invalidateDependents(desc *registry.ResourceDescriptor, parent string) {
	for _, child := range desc.Dependents(parent) {
		f.Values[child.Name] = emptyValue(child)
		delete(f.Options, child.Name)
		delete(f.OptionsFor, child.Name)
		delete(f.Pending, child.Name)
		delete(f.Errors, child.Name)
		f.Generations[child.Name]++
		f.invalidateDependents(desc, child.Name)
	}
}

func coerce(field registry.FieldDescriptor, raw any) (any, error) {
	if registry.IsEmpty(raw) {
		return emptyValue(field), nil
	}
	switch field.Kind {
	case registry.KindNumber:
		n, ok := registry.ToNumber(raw)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("ожидалось число")
		}
		return clamp(field, n), nil
	case registry.KindDate:
		day, err := registry.ParseCalendarDate(raw)
		if err != nil {
			return nil, fmt.Errorf("ожидалась дата в формате ГГГГ-ММ-ДД")
		}
		return day.Format(registry.DateLayout), nil
	case registry.KindSelect:
		return registry.OptionValue(raw), nil
	case registry.KindMultiSelect:
		var items []any
		switch v := raw.(type) {
		case []any:
			items = v
		case []string:
			for _, s := range v {
				items = append(items, s)
			}
		default:
			items = []any{raw}
		}
		out := make([]any, 0, len(items))
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			s := registry.OptionValue(item)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
		return out, nil
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprint(raw), nil
	}
}

func clamp(field registry.FieldDescriptor, n float64) float64 {
	if field.Min != nil && n < *field.Min {
		return *field.Min
	}
	if field.Max != nil && n > *field.Max {
		return *field.Max
	}
	return n
}

func sameValue(a, b any) bool {
	if registry.IsEmpty(a) && registry.IsEmpty(b) {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// ParentValue - текущее значение родителя зависимого поля ("" если не выбрано).
func (f *Form) ParentValue(desc *registry.ResourceDescriptor, child string) string {
	field, ok := desc.Field(child)
	if !ok || field.DependsOn == "" {
		return ""
	}
	return strings.TrimSpace(registry.OptionValue(f.Values[field.DependsOn]))
}

// BeginFetch готовит загрузку вариантов поля. false - загружать нечего
// (статические варианты или родитель ещё не выбран).
func (f *Form) BeginFetch(desc *registry.ResourceDescriptor, name string) (FetchTicket, bool) {
	f.ensureMaps()

	field, ok := desc.Field(name)
	if !ok || !field.Kind.IsSelect() {
		return FetchTicket{}, false
	}

	ticket := FetchTicket{FormID: f.ID, Field: name, Generation: f.Generations[name]}
	switch {
	case field.OptionsEndpoint != "":
		ticket.Endpoint = field.OptionsEndpoint
	case field.DependsOn != "":
		parent := f.ParentValue(desc, name)
		if parent == "" {
			return FetchTicket{}, false
		}
		ticket.ParentValue = parent
		ticket.Endpoint = field.DependentURL(parent)
	default:
		return FetchTicket{}, false
	}

	f.Pending[name] = true
	return ticket, true
}

// ApplyFetch применяет загруженные варианты. Устаревший ответ (поколение поля
// сменилось, пока шёл запрос) отбрасывается и возвращается false.
func (f *Form) ApplyFetch(desc *registry.ResourceDescriptor, ticket FetchTicket, opts []registry.Option) bool {
	f.ensureMaps()

	if !f.isCurrent(desc, ticket) {
		return false
	}
	if opts == nil {
		opts = []registry.Option{}
	}
	f.Options[ticket.Field] = opts
	f.OptionsFor[ticket.Field] = ticket.ParentValue
	delete(f.Pending, ticket.Field)
	return true
}

// FailFetch снимает признак загрузки, если билет ещё актуален.
func (f *Form) FailFetch(desc *registry.ResourceDescriptor, ticket FetchTicket) bool {
	f.ensureMaps()

	if !f.isCurrent(desc, ticket) {
		return false
	}
	delete(f.Pending, ticket.Field)
	return true
}

func (f *Form) isCurrent(desc *registry.ResourceDescriptor, ticket FetchTicket) bool {
	if ticket.FormID != "" && ticket.FormID != f.ID {
		return false
	}
	if f.Generations[ticket.Field] != ticket.Generation {
		return false
	}
	if ticket.ParentValue != "" && f.ParentValue(desc, ticket.Field) != ticket.ParentValue {
		return false
	}
	return true
}

// NeedsFetch - варианты поля ещё не загружены для текущего значения родителя.
func (f *Form) NeedsFetch(desc *registry.ResourceDescriptor, name string) bool {
	field, ok := desc.Field(name)
	if !ok || !field.Kind.IsSelect() || len(field.StaticOptions) > 0 {
		return false
	}
	if _, cached := f.Options[name]; !cached {
		return field.OptionsEndpoint != "" || f.ParentValue(desc, name) != ""
	}
	return field.DependsOn != "" && f.OptionsFor[name] != f.ParentValue(desc, name)
}
