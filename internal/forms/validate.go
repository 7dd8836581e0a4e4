package forms

import (
	"fmt"
	"regexp"
	"strconv"

	"backoffice-console/internal/registry"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/validation"
)

// Validate проверяет значения формы по правилам полей. Ошибки пишутся в форму
// и возвращаются одним ValidationError.
func Validate(desc *registry.ResourceDescriptor, f *Form, v *validation.CustomValidator) error {
	f.ensureMaps()
	out := &apperrors.ValidationError{}

	for _, field := range desc.Fields {
		if field.ReadOnly {
			continue
		}
		// ошибка приведения оставила поле пустым - показываем её, а не "обязательное поле"
		if msg, bad := f.Errors[field.Name]; bad && registry.IsEmpty(f.Values[field.Name]) {
			out.Add(field.Name, msg)
			continue
		}
		if msg := checkField(desc, f, field, v); msg != "" {
			out.Add(field.Name, msg)
		}
	}

	f.Errors = make(map[string]string, len(out.Fields))
	for name, msg := range out.Fields {
		f.Errors[name] = msg
	}
	if out.HasErrors() {
		return out
	}
	return nil
}

func checkField(desc *registry.ResourceDescriptor, f *Form, field registry.FieldDescriptor, v *validation.CustomValidator) string {
	value := f.Values[field.Name]
	if registry.IsEmpty(value) {
		if field.Required {
			return "обязательное поле"
		}
		return ""
	}

	switch field.Kind {
	case registry.KindText:
		if field.Pattern == "" {
			return ""
		}
		re, err := regexp.Compile(field.Pattern)
		if err != nil {
			return fmt.Sprintf("неверный шаблон поля: %v", err)
		}
		if !re.MatchString(fmt.Sprint(value)) {
			return "значение не соответствует формату"
		}
	case registry.KindNumber:
		n, ok := registry.ToNumber(value)
		if !ok {
			return "ожидалось число"
		}
		if field.Min != nil {
			if err := v.Var(n, "gte="+formatBound(*field.Min)); err != nil {
				return "значение меньше " + formatBound(*field.Min)
			}
		}
		if field.Max != nil {
			if err := v.Var(n, "lte="+formatBound(*field.Max)); err != nil {
				return "значение больше " + formatBound(*field.Max)
			}
		}
	case registry.KindDate:
		if _, err := registry.ParseCalendarDate(value); err != nil {
			return "ожидалась дата в формате ГГГГ-ММ-ДД"
		}
	case registry.KindSelect:
		if opts, known := knownOptions(desc, f, field); known && !hasOption(opts, registry.OptionValue(value)) {
			return "значение отсутствует в списке"
		}
	case registry.KindMultiSelect:
		opts, known := knownOptions(desc, f, field)
		if !known {
			return ""
		}
		list, _ := value.([]any)
		for _, item := range list {
			if !hasOption(opts, registry.OptionValue(item)) {
				return "значение отсутствует в списке"
			}
		}
	}
	return ""
}

// knownOptions - варианты, по которым можно проверять значение. Для незагруженных
// или загруженных под другого родителя вариантов проверка пропускается.
func knownOptions(desc *registry.ResourceDescriptor, f *Form, field registry.FieldDescriptor) ([]registry.Option, bool) {
	if len(field.StaticOptions) > 0 {
		return field.StaticOptions, true
	}
	opts, ok := f.Options[field.Name]
	if !ok {
		return nil, false
	}
	if field.DependsOn != "" && f.OptionsFor[field.Name] != f.ParentValue(desc, field.Name) {
		return nil, false
	}
	return opts, true
}

func hasOption(opts []registry.Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}

func formatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}

// Submit проверяет форму и строит тело запроса через дескриптор.
func Submit(desc *registry.ResourceDescriptor, f *Form, v *validation.CustomValidator) (map[string]any, error) {
	if err := Validate(desc, f, v); err != nil {
		return nil, err
	}
	payload, err := desc.Payload(f.Values, f.RecordID)
	if err != nil {
		return nil, &apperrors.ValidationError{Fields: map[string]string{"form": err.Error()}}
	}
	return payload, nil
}
