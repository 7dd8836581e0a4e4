package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout        = "2006-01-02"
	DefaultDateAnchor = "12:00:00"
)

// NormalizeDate приводит календарную дату к ISO-8601 дате-времени в фиксированное
// время суток ресурса (UTC), чтобы бэкенд не сдвигал день при переводе зон.
func NormalizeDate(raw any, anchor string) (string, error) {
	if anchor == "" {
		anchor = DefaultDateAnchor
	}
	day, err := ParseCalendarDate(raw)
	if err != nil {
		return "", err
	}
	clock, err := time.Parse("15:04:05", anchor)
	if err != nil {
		return "", fmt.Errorf("неверное опорное время '%s': %w", anchor, err)
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC)
	return at.Format(time.RFC3339), nil
}

// ParseCalendarDate принимает "2006-01-02", RFC3339 или time.Time и отбрасывает время.
func ParseCalendarDate(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(v)
		if len(s) >= len(DateLayout) {
			if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("'%s' не является датой", v)
	}
	return time.Time{}, fmt.Errorf("значение типа %T не является датой", raw)
}

// ToNumber переводит значение формы в число.
func ToNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// OptionValue - строковое представление значения выбора (id записи).
func OptionValue(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return fmt.Sprint(raw)
}

func IsEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func wireSelectValue(f FieldDescriptor, raw any) (any, error) {
	s := OptionValue(raw)
	if s == "" {
		return nil, nil
	}
	if f.BoolValue {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("поле '%s': ожидалось да/нет, получено '%s'", f.Name, s)
		}
		return b, nil
	}
	if !f.NumericID {
		return s, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("поле '%s': ожидался числовой идентификатор, получено '%s'", f.Name, s)
	}
	return n, nil
}

func asList(raw any) []any {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, 0, len(v))
		for _, s := range v {
			out = append(out, s)
		}
		return out
	}
	return []any{raw}
}

// WireValue - значение поля в формате тела запроса.
func WireValue(f FieldDescriptor, raw any, anchor string) (any, error) {
	if IsEmpty(raw) {
		if f.Kind == KindMultiSelect {
			return []any{}, nil
		}
		return nil, nil
	}
	switch f.Kind {
	case KindNumber:
		n, ok := ToNumber(raw)
		if !ok {
			return nil, fmt.Errorf("поле '%s': ожидалось число", f.Name)
		}
		return n, nil
	case KindDate:
		return NormalizeDate(raw, anchor)
	case KindSelect:
		return wireSelectValue(f, raw)
	case KindMultiSelect:
		items := asList(raw)
		out := make([]any, 0, len(items))
		for _, item := range items {
			v, err := wireSelectValue(f, item)
			if err != nil {
				return nil, err
			}
			if v != nil {
				out = append(out, v)
			}
		}
		return out, nil
	default:
		if s, ok := raw.(string); ok {
			return strings.TrimSpace(s), nil
		}
		return fmt.Sprint(raw), nil
	}
}

// DefaultPayload строит тело запроса по списку полей дескриптора: поля - единственный
// источник правды и для формы, и для тела.
func DefaultPayload(d *ResourceDescriptor, values map[string]any, id string) (map[string]any, error) {
	payload := make(map[string]any, len(d.Fields)+1)
	for _, f := range d.Fields {
		if f.ReadOnly {
			continue
		}
		v, err := WireValue(f, values[f.Name], d.anchor())
		if err != nil {
			return nil, err
		}
		payload[f.Name] = v
	}
	if id != "" {
		payload["id"] = wireID(id)
	}
	return payload, nil
}

func wireID(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// DefaultRecord - обратное преобразование: запись сервера в значения формы.
func DefaultRecord(d *ResourceDescriptor, record map[string]any) map[string]any {
	values := make(map[string]any, len(d.Fields))
	for _, f := range d.Fields {
		raw, ok := record[f.Name]
		if !ok || raw == nil {
			values[f.Name] = nil
			continue
		}
		switch f.Kind {
		case KindDate:
			if t, err := ParseCalendarDate(raw); err == nil {
				values[f.Name] = t.Format(DateLayout)
			} else {
				values[f.Name] = nil
			}
		case KindSelect:
			if b, ok := raw.(bool); ok && f.BoolValue {
				values[f.Name] = strconv.FormatBool(b)
			} else {
				values[f.Name] = OptionValue(raw)
			}
		case KindMultiSelect:
			items := asList(raw)
			list := make([]any, 0, len(items))
			for _, item := range items {
				list = append(list, OptionValue(item))
			}
			values[f.Name] = list
		default:
			values[f.Name] = raw
		}
	}
	return values
}

// RecordID извлекает идентификатор записи.
func RecordID(record map[string]any) string {
	return OptionValue(record["id"])
}
