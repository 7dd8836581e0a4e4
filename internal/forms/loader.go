package forms

import (
	"context"
	"fmt"
	"net/http"

	"backoffice-console/internal/registry"
	"backoffice-console/internal/transport"
)

// OptionLoader загружает варианты выбора с удалённого эндпоинта.
type OptionLoader interface {
	LoadOptions(ctx context.Context, resource, endpoint string) ([]registry.Option, error)
}

type TransportLoader struct {
	transport transport.Transport
}

func NewTransportLoader(t transport.Transport) *TransportLoader {
	return &TransportLoader{transport: t}
}

// LoadOptions ожидает массив записей {id, name}. Подпись берётся из первого
// непустого ключа name/title/label.
func (l *TransportLoader) LoadOptions(ctx context.Context, resource, endpoint string) ([]registry.Option, error) {
	resp, err := l.transport.Do(ctx, transport.Request{
		Method:   http.MethodGet,
		URL:      endpoint,
		Resource: resource,
	})
	if err != nil {
		return nil, err
	}
	items, err := transport.DecodeList(resp)
	if err != nil {
		return nil, fmt.Errorf("варианты '%s': %w", endpoint, err)
	}
	return ToOptions(items), nil
}

func ToOptions(items []map[string]any) []registry.Option {
	opts := make([]registry.Option, 0, len(items))
	for _, item := range items {
		value := registry.RecordID(item)
		if value == "" {
			continue
		}
		label := value
		for _, key := range []string{"name", "title", "label"} {
			if s, ok := item[key].(string); ok && s != "" {
				label = s
				break
			}
		}
		opts = append(opts, registry.Option{Label: label, Value: value})
	}
	return opts
}

// Resolve загружает все недостающие варианты формы последовательно. Ошибка загрузки
// одного поля не мешает остальным; возвращается первая.
func Resolve(ctx context.Context, desc *registry.ResourceDescriptor, f *Form, loader OptionLoader) error {
	var firstErr error
	for _, field := range desc.Fields {
		if !f.NeedsFetch(desc, field.Name) {
			continue
		}
		ticket, ok := f.BeginFetch(desc, field.Name)
		if !ok {
			continue
		}
		opts, err := loader.LoadOptions(ctx, desc.Key, ticket.Endpoint)
		if err != nil {
			f.FailFetch(desc, ticket)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		f.ApplyFetch(desc, ticket, opts)
	}
	return firstErr
}
