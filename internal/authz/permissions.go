// internal/authz/permissions.go
package authz

// --- КОДЫ ДОСТУПА ---
// Коды непрозрачны: сервер выдаёт их роли, клиент только проверяет принадлежность.

const (
	// Справочники (List Of Values): один грубый код на ресурс
	Governorates          = "LOVg"
	Offices               = "LOVo"
	DeviceTypes           = "LOVdt"
	Devices               = "LOVdv"
	DamagedDeviceTypes    = "LOVdd"
	DamagedPassportTypes  = "LOVdp"
	ExpenseTypes          = "LOVe"
	ArchiveDirections     = "LOVad"
	ArchiveSubjects       = "LOVas"
	ArchiveParties        = "LOVap"
	Companies             = "LOVc"
	Positions             = "LOVps"
	AttendanceStatuses    = "LOVat"
	Holidays              = "LOVh"
	MinistryHierarchy     = "LOVmh"
	MinistryHierarchyEdit = "LOVmhe"

	// Рабочие экраны: коды на каждое действие
	ExpensesView   = "EXv"
	ExpensesCreate = "EXc"
	ExpensesUpdate = "EXu"
	ExpensesDelete = "EXd"

	// Сам движок
	RolePermissionsManage = "PERm"
	AuditView             = "AUDv"
)

type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}
