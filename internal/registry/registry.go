// Файл: internal/registry/registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"backoffice-console/internal/authz"
	apperrors "backoffice-console/pkg/errors"

	"go.uber.org/zap"
)

// HierarchyTab - один уровень вложенного ресурса. DependsOnTab называет вкладку,
// записи которой наполняют выпадающий список ForeignKey.
type HierarchyTab struct {
	Name         string
	Label        string
	Resource     *ResourceDescriptor
	DependsOnTab string
	ForeignKey   string
}

// Composite - ключ, который ведёт не к одному дескриптору, а к набору вкладок.
type Composite struct {
	Key        string
	Label      string
	Icon       string
	Permission string
	Tabs       []HierarchyTab
}

func (c *Composite) GuardKey() string { return c.Key }
func (c *Composite) RequiredPermission() string { return c.Permission }
func (c *Composite) PermissionFor(_ authz.Action) string { return c.Permission }

func (c *Composite) Tab(name string) (HierarchyTab, bool) {
	for _, t := range c.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return HierarchyTab{}, false
}

func (c *Composite) Validate() error {
	if c.Key == "" || c.Permission == "" {
		return fmt.Errorf("составной ресурс без ключа или кода доступа")
	}
	if len(c.Tabs) == 0 {
		return fmt.Errorf("составной ресурс '%s' без вкладок", c.Key)
	}
	names := make(map[string]bool, len(c.Tabs))
	for _, t := range c.Tabs {
		if t.Name == "" || t.Resource == nil {
			return fmt.Errorf("вкладка без имени или дескриптора")
		}
		if names[t.Name] {
			return fmt.Errorf("вкладка '%s' объявлена дважды", t.Name)
		}
		names[t.Name] = true
		if err := t.Resource.Validate(); err != nil {
			return fmt.Errorf("вкладка '%s': %w", t.Name, err)
		}
	}
	for _, t := range c.Tabs {
		if t.DependsOnTab == "" {
			continue
		}
		if !names[t.DependsOnTab] || t.DependsOnTab == t.Name {
			return fmt.Errorf("вкладка '%s' зависит от неизвестной вкладки '%s'", t.Name, t.DependsOnTab)
		}
		f, ok := t.Resource.Field(t.ForeignKey)
		if !ok || !f.Kind.IsSelect() {
			return fmt.Errorf("вкладка '%s': внешний ключ '%s' должен быть полем выбора", t.Name, t.ForeignKey)
		}
	}
	return nil
}

// Entry - результат Resolve: ровно одно из полей заполнено.
type Entry struct {
	Resource  *ResourceDescriptor
	Composite *Composite
}

type RegistryInterface interface {
	Register(desc ResourceDescriptor) error
	RegisterComposite(c Composite) error
	Get(key string) (*ResourceDescriptor, error)
	GetComposite(key string) (*Composite, error)
	Resolve(key string) (Entry, error)
	Keys() []string
}

// Registry - конфигурация, заданная при старте. После регистрации записи не меняются.
type Registry struct {
	resources  map[string]*ResourceDescriptor
	composites map[string]*Composite
	mu         sync.RWMutex
	logger     *zap.Logger
}

func New(logger *zap.Logger) *Registry {
	return &Registry{
		resources:  make(map[string]*ResourceDescriptor),
		composites: make(map[string]*Composite),
		logger:     logger.Named("registry"),
	}
}

func (r *Registry) Register(desc ResourceDescriptor) error {
	if err := desc.Validate(); err != nil {
		return apperrors.NewConfigurationError(desc.Key, "%v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(desc.Key) {
		return apperrors.NewConfigurationError(desc.Key, "ключ уже зарегистрирован")
	}
	d := desc.Clone()
	r.resources[desc.Key] = &d
	return nil
}

func (r *Registry) RegisterComposite(c Composite) error {
	if err := c.Validate(); err != nil {
		return apperrors.NewConfigurationError(c.Key, "%v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(c.Key) {
		return apperrors.NewConfigurationError(c.Key, "ключ уже зарегистрирован")
	}
	cc := c
	cc.Tabs = make([]HierarchyTab, len(c.Tabs))
	for i, tab := range c.Tabs {
		if tab.Resource != nil {
			res := tab.Resource.Clone()
			tab.Resource = &res
		}
		cc.Tabs[i] = tab
	}
	r.composites[c.Key] = &cc
	return nil
}

func (r *Registry) taken(key string) bool {
	_, isResource := r.resources[key]
	_, isComposite := r.composites[key]
	return isResource || isComposite
}

// MustRegister - для конфигурации при старте: ошибка в каталоге - дефект сборки.
func (r *Registry) MustRegister(descs ...ResourceDescriptor) {
	for _, d := range descs {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) MustRegisterComposite(cs ...Composite) {
	for _, c := range cs {
		if err := r.RegisterComposite(c); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(key string) (*ResourceDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, exists := r.resources[key]
	if !exists {
		r.logger.Error("Запрошен незарегистрированный ресурс", zap.String("resource", key), zap.Bool("defect", true))
		return nil, apperrors.NewConfigurationError(key, "ресурс не зарегистрирован")
	}
	return desc, nil
}

func (r *Registry) GetComposite(key string) (*Composite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.composites[key]
	if !exists {
		r.logger.Error("Запрошен незарегистрированный составной ресурс", zap.String("resource", key), zap.Bool("defect", true))
		return nil, apperrors.NewConfigurationError(key, "составной ресурс не зарегистрирован")
	}
	return c, nil
}

func (r *Registry) Resolve(key string) (Entry, error) {
	r.mu.RLock()
	desc, isResource := r.resources[key]
	c, isComposite := r.composites[key]
	r.mu.RUnlock()

	switch {
	case isResource:
		return Entry{Resource: desc}, nil
	case isComposite:
		return Entry{Composite: c}, nil
	}
	r.logger.Error("Запрошен незарегистрированный ключ", zap.String("resource", key), zap.Bool("defect", true))
	return Entry{}, apperrors.NewConfigurationError(key, "ресурс не зарегистрирован")
}

func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.resources)+len(r.composites))
	for k := range r.resources {
		keys = append(keys, k)
	}
	for k := range r.composites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
