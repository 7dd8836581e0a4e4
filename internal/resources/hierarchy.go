package resources

import (
	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"
)

const (
	MinistryHierarchyKey = "ministry-hierarchy"

	MinistriesKey          = "ministries"
	GeneralDirectoratesKey = "general-directorates"
	DirectoratesKey        = "directorates"
	DepartmentsKey         = "departments"
	SectionsKey            = "sections"
)

// level - уровень иерархии министерства: просмотр по LOVmh, изменения по LOVmhe.
// У корня parentField пуст.
func level(key, label, endpoint, parentField, parentLabel, parentEndpoint string) registry.ResourceDescriptor {
	d := registry.ResourceDescriptor{
		Key:        key,
		Label:      label,
		Icon:       "sitemap",
		Permission: authz.MinistryHierarchy,
		ActionPermissions: map[authz.Action]string{
			authz.ActionCreate: authz.MinistryHierarchyEdit,
			authz.ActionUpdate: authz.MinistryHierarchyEdit,
			authz.ActionDelete: authz.MinistryHierarchyEdit,
		},
		ListEndpoint:   endpoint,
		CreateEndpoint: endpoint,
		UpdateEndpoint: endpoint + "/%s",
		DeleteEndpoint: endpoint + "/%s",
		Columns:        []registry.ColumnDescriptor{nameColumn},
		Fields:         []registry.FieldDescriptor{nameField},
	}
	if parentField != "" {
		d.Searchable = true
		d.SearchKeys = []string{parentField}
		d.Columns = append(d.Columns, registry.ColumnDescriptor{Title: parentLabel, DataKey: parentField, Render: registry.RenderOption})
		d.Fields = append(d.Fields, registry.FieldDescriptor{
			Name: parentField, Label: parentLabel, Kind: registry.KindSelect, Required: true,
			OptionsEndpoint: parentEndpoint, NumericID: true,
		})
	}
	return d
}

func Ministries() registry.ResourceDescriptor {
	return level(MinistriesKey, "Ministries", "/ministry", "", "", "")
}

func GeneralDirectorates() registry.ResourceDescriptor {
	return level(GeneralDirectoratesKey, "General directorates", "/generaldirectorate", "ministryId", "Ministry", "/ministry")
}

func Directorates() registry.ResourceDescriptor {
	return level(DirectoratesKey, "Directorates", "/directorate", "generalDirectorateId", "General directorate", "/generaldirectorate")
}

func Departments() registry.ResourceDescriptor {
	return level(DepartmentsKey, "Departments", "/department", "directorateId", "Directorate", "/directorate")
}

func Sections() registry.ResourceDescriptor {
	return level(SectionsKey, "Sections", "/section", "departmentId", "Department", "/department")
}

// HierarchyLevels - дескрипторы вкладок; регистрируются и как обычные ресурсы,
// чтобы формы вкладок находили свой дескриптор по ключу.
func HierarchyLevels() []registry.ResourceDescriptor {
	return []registry.ResourceDescriptor{
		Ministries(),
		GeneralDirectorates(),
		Directorates(),
		Departments(),
		Sections(),
	}
}

// MinistryHierarchy собирает вкладки из уже зарегистрированных дескрипторов.
func MinistryHierarchy(reg registry.RegistryInterface) (registry.Composite, error) {
	tabs := []struct {
		key, dependsOn, foreignKey string
	}{
		{MinistriesKey, "", ""},
		{GeneralDirectoratesKey, MinistriesKey, "ministryId"},
		{DirectoratesKey, GeneralDirectoratesKey, "generalDirectorateId"},
		{DepartmentsKey, DirectoratesKey, "directorateId"},
		{SectionsKey, DepartmentsKey, "departmentId"},
	}

	c := registry.Composite{
		Key:        MinistryHierarchyKey,
		Label:      "Ministry hierarchy",
		Icon:       "sitemap",
		Permission: authz.MinistryHierarchy,
	}
	for _, t := range tabs {
		desc, err := reg.Get(t.key)
		if err != nil {
			return registry.Composite{}, err
		}
		c.Tabs = append(c.Tabs, registry.HierarchyTab{
			Name:         t.key,
			Label:        desc.Label,
			Resource:     desc,
			DependsOnTab: t.dependsOn,
			ForeignKey:   t.foreignKey,
		})
	}
	return c, nil
}
