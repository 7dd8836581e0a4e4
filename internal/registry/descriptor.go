package registry

import (
	"fmt"
	"net/url"
	"strings"

	"backoffice-console/internal/authz"
)

type FieldKind string

const (
	KindText        FieldKind = "text"
	KindNumber      FieldKind = "number"
	KindDate        FieldKind = "date"
	KindSelect      FieldKind = "select"
	KindMultiSelect FieldKind = "multiselect"
)

func (k FieldKind) IsSelect() bool {
	return k == KindSelect || k == KindMultiSelect
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type FieldDescriptor struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Pattern  string    `json:"pattern,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`

	// Источник вариантов: ровно один для select/multiselect.
	StaticOptions   []Option `json:"static_options,omitempty"`
	OptionsEndpoint string   `json:"options_endpoint,omitempty"`
	DependsOn       string   `json:"depends_on,omitempty"`
	// DependentEndpoint - формат с одним %s под значение родителя, например "/office?GovernorateId=%s".
	DependentEndpoint string `json:"dependent_endpoint,omitempty"`

	// NumericID - значение выбора уходит на сервер числом.
	NumericID   bool   `json:"-"`
	// BoolValue - выбор "true"/"false" уходит на сервер булевым значением.
	BoolValue   bool   `json:"-"`
	ReadOnly    bool   `json:"read_only,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

func (f FieldDescriptor) sourceCount() int {
	n := 0
	if len(f.StaticOptions) > 0 {
		n++
	}
	if f.OptionsEndpoint != "" {
		n++
	}
	if f.DependsOn != "" {
		n++
	}
	return n
}

// DependentURL подставляет экранированное значение родителя в эндпоинт зависимого поля.
func (f FieldDescriptor) DependentURL(parentValue string) string {
	return fmt.Sprintf(f.DependentEndpoint, url.QueryEscape(parentValue))
}

type ColumnRender string

const (
	RenderPlain  ColumnRender = ""
	RenderDate   ColumnRender = "date"
	RenderBool   ColumnRender = "bool"
	RenderOption ColumnRender = "option"
)

type ColumnDescriptor struct {
	Title      string       `json:"title"`
	DataKey    string       `json:"data_key"`
	Render     ColumnRender `json:"render,omitempty"`
	Sortable   bool         `json:"sortable,omitempty"`
	Filterable bool         `json:"filterable,omitempty"`
	// Actions заполняется только у синтезированной колонки действий.
	Actions []authz.Action `json:"actions,omitempty"`
}

const ActionsColumnKey = "actions"

type DeleteMode int

const (
	DeleteByPath DeleteMode = iota
	// DeleteByBody - id уходит в теле DELETE-запроса (особенность API офисов).
	DeleteByBody
)

// PayloadFunc переводит значения формы в тело запроса; id пуст при создании.
type PayloadFunc func(values map[string]any, id string) (map[string]any, error)

// RecordFunc переводит запись сервера в значения формы.
type RecordFunc func(record map[string]any) map[string]any

type ResourceDescriptor struct {
	Key   string
	Label string
	Icon  string
	// Permission - грубый код ресурса; ActionPermissions переопределяет его по действиям.
	Permission        string
	ActionPermissions map[authz.Action]string

	ListEndpoint   string
	CreateEndpoint string
	UpdateEndpoint string
	DeleteEndpoint string
	DeleteMode     DeleteMode
	DeleteBodyKey  string

	Searchable bool
	SearchKeys []string

	// DateAnchor - время суток, к которому приводятся даты ("12:00:00" по умолчанию).
	DateAnchor string

	Columns []ColumnDescriptor
	Fields  []FieldDescriptor

	ToPayload  PayloadFunc
	FromRecord RecordFunc
}

// Clone - глубокая копия: реестр не должен видеть правок вызывающего после регистрации.
func (d ResourceDescriptor) Clone() ResourceDescriptor {
	c := d
	if d.ActionPermissions != nil {
		c.ActionPermissions = make(map[authz.Action]string, len(d.ActionPermissions))
		for action, code := range d.ActionPermissions {
			c.ActionPermissions[action] = code
		}
	}
	c.SearchKeys = append([]string(nil), d.SearchKeys...)
	if d.Columns != nil {
		c.Columns = make([]ColumnDescriptor, len(d.Columns))
		for i, col := range d.Columns {
			col.Actions = append([]authz.Action(nil), col.Actions...)
			c.Columns[i] = col
		}
	}
	if d.Fields != nil {
		c.Fields = make([]FieldDescriptor, len(d.Fields))
		for i, f := range d.Fields {
			c.Fields[i] = f.clone()
		}
	}
	return c
}

func (f FieldDescriptor) clone() FieldDescriptor {
	f.StaticOptions = append([]Option(nil), f.StaticOptions...)
	if f.Min != nil {
		v := *f.Min
		f.Min = &v
	}
	if f.Max != nil {
		v := *f.Max
		f.Max = &v
	}
	return f
}

func (d *ResourceDescriptor) GuardKey() string { return d.Key }

func (d *ResourceDescriptor) RequiredPermission() string { return d.Permission }

func (d *ResourceDescriptor) PermissionFor(action authz.Action) string {
	if code, ok := d.ActionPermissions[action]; ok && code != "" {
		return code
	}
	return d.Permission
}

func (d *ResourceDescriptor) UpdateEndpointFor(id string) string {
	return fmt.Sprintf(d.UpdateEndpoint, id)
}

func (d *ResourceDescriptor) DeleteEndpointFor(id string) string {
	if d.DeleteMode == DeleteByBody {
		return d.DeleteEndpoint
	}
	return fmt.Sprintf(d.DeleteEndpoint, id)
}

func (d *ResourceDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Dependents - поля, варианты которых зависят от parent.
func (d *ResourceDescriptor) Dependents(parent string) []FieldDescriptor {
	var out []FieldDescriptor
	for _, f := range d.Fields {
		if f.DependsOn == parent {
			out = append(out, f)
		}
	}
	return out
}

// TableColumns - настроенные колонки плюс ровно одна колонка действий в конце.
func (d *ResourceDescriptor) TableColumns() []ColumnDescriptor {
	cols := make([]ColumnDescriptor, 0, len(d.Columns)+1)
	for _, c := range d.Columns {
		if c.DataKey == ActionsColumnKey {
			continue
		}
		cols = append(cols, c)
	}
	return append(cols, ColumnDescriptor{Title: "Actions", DataKey: ActionsColumnKey})
}

func (d *ResourceDescriptor) anchor() string {
	if d.DateAnchor == "" {
		return DefaultDateAnchor
	}
	return d.DateAnchor
}

// Payload - тело запроса для create (id пуст) и update.
func (d *ResourceDescriptor) Payload(values map[string]any, id string) (map[string]any, error) {
	if d.ToPayload != nil {
		return d.ToPayload(values, id)
	}
	return DefaultPayload(d, values, id)
}

// Record - значения формы для редактирования существующей записи.
func (d *ResourceDescriptor) Record(record map[string]any) map[string]any {
	if d.FromRecord != nil {
		return d.FromRecord(record)
	}
	return DefaultRecord(d, record)
}

// Validate проверяет дескриптор при регистрации.
func (d *ResourceDescriptor) Validate() error {
	var problems []string
	if d.Key == "" {
		problems = append(problems, "пустой ключ")
	}
	if d.Permission == "" {
		problems = append(problems, "не указан код доступа")
	}
	if d.ListEndpoint == "" {
		problems = append(problems, "не указан эндпоинт списка")
	}
	if d.CreateEndpoint == "" {
		problems = append(problems, "не указан эндпоинт создания")
	}
	if strings.Count(d.UpdateEndpoint, "%s") != 1 {
		problems = append(problems, "эндпоинт обновления должен содержать один %s")
	}
	switch d.DeleteMode {
	case DeleteByPath:
		if strings.Count(d.DeleteEndpoint, "%s") != 1 {
			problems = append(problems, "эндпоинт удаления должен содержать один %s")
		}
	case DeleteByBody:
		if d.DeleteEndpoint == "" || d.DeleteBodyKey == "" {
			problems = append(problems, "для удаления по телу нужны эндпоинт и ключ тела")
		}
	}
	if len(d.Columns) == 0 {
		problems = append(problems, "нет колонок")
	}

	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Name == "" {
			problems = append(problems, "поле без имени")
			continue
		}
		if seen[f.Name] {
			problems = append(problems, fmt.Sprintf("поле '%s' объявлено дважды", f.Name))
		}
		seen[f.Name] = true

		if f.Kind.IsSelect() && f.sourceCount() != 1 {
			problems = append(problems, fmt.Sprintf("поле '%s': нужен ровно один источник вариантов", f.Name))
		}
		if !f.Kind.IsSelect() && f.sourceCount() > 0 {
			problems = append(problems, fmt.Sprintf("поле '%s': источник вариантов у поля вида %s", f.Name, f.Kind))
		}
		if f.BoolValue && (f.Kind != KindSelect || f.NumericID) {
			problems = append(problems, fmt.Sprintf("поле '%s': булево значение только у простого выбора", f.Name))
		}
		if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
			problems = append(problems, fmt.Sprintf("поле '%s': min больше max", f.Name))
		}
	}
	for _, f := range d.Fields {
		if f.DependsOn == "" {
			continue
		}
		if !seen[f.DependsOn] {
			problems = append(problems, fmt.Sprintf("поле '%s' зависит от неизвестного '%s'", f.Name, f.DependsOn))
		}
		if strings.Count(f.DependentEndpoint, "%s") != 1 {
			problems = append(problems, fmt.Sprintf("поле '%s': зависимый эндпоинт должен содержать один %%s", f.Name))
		}
		if d.dependencyCycle(f.Name) {
			problems = append(problems, fmt.Sprintf("поле '%s': циклическая зависимость", f.Name))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func (d *ResourceDescriptor) dependencyCycle(start string) bool {
	visited := map[string]bool{}
	current := start
	for {
		f, ok := d.Field(current)
		if !ok || f.DependsOn == "" {
			return false
		}
		if visited[current] {
			return true
		}
		visited[current] = true
		current = f.DependsOn
	}
}
