package resources

import (
	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"
)

// Действия меню, не связанные с ресурсом
const (
	ActionRolePermissions = "role-permissions"
	ActionAudit           = "audit"
	ActionProfile         = "profile"
)

func resourceItem(d registry.ResourceDescriptor) registry.MenuItem {
	return registry.MenuItem{
		Key:                d.Key,
		Label:              d.Label,
		Icon:               d.Icon,
		ResourceKey:        d.Key,
		RequiredPermission: []string{d.PermissionFor(authz.ActionView)},
	}
}

// Menu - полное дерево навигации. Группа требует любой из кодов своих пунктов.
func Menu() []registry.MenuItem {
	lov := []registry.MenuItem{
		resourceItem(Governorates()),
		resourceItem(Offices()),
		resourceItem(DeviceTypes()),
		resourceItem(Devices()),
		resourceItem(DamagedDeviceTypes()),
		resourceItem(DamagedPassportTypes()),
		resourceItem(ExpenseTypes()),
		resourceItem(Companies()),
		resourceItem(Positions()),
		resourceItem(AttendanceStatuses()),
		resourceItem(Holidays()),
		{
			Key:                MinistryHierarchyKey,
			Label:              "Ministry hierarchy",
			Icon:               "sitemap",
			ResourceKey:        MinistryHierarchyKey,
			RequiredPermission: []string{authz.MinistryHierarchy},
		},
	}
	archive := []registry.MenuItem{
		resourceItem(ArchiveDirections()),
		resourceItem(ArchiveSubjects()),
		resourceItem(ArchiveParties()),
	}

	return []registry.MenuItem{
		{Key: ActionProfile, Label: "Profile", Icon: "user", Action: ActionProfile},
		{Key: "lov", Label: "Reference data", Icon: "list", RequiredPermission: codesOf(lov), Children: lov},
		{Key: "archive", Label: "Archive", Icon: "archive", RequiredPermission: codesOf(archive), Children: archive},
		resourceItem(Expenses()),
		{
			Key:                ActionRolePermissions,
			Label:              "Role permissions",
			Icon:               "shield",
			Action:             ActionRolePermissions,
			RequiredPermission: []string{authz.RolePermissionsManage},
		},
		{
			Key:                ActionAudit,
			Label:              "Audit journal",
			Icon:               "history",
			Action:             ActionAudit,
			RequiredPermission: []string{authz.AuditView},
		},
	}
}

func codesOf(items []registry.MenuItem) []string {
	var codes []string
	for _, it := range items {
		codes = append(codes, it.RequiredPermission...)
	}
	return codes
}

// Register заполняет реестр всем каталогом, включая составной ресурс иерархии.
func Register(reg *registry.Registry) error {
	for _, d := range append(All(), HierarchyLevels()...) {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	c, err := MinistryHierarchy(reg)
	if err != nil {
		return err
	}
	return reg.RegisterComposite(c)
}
