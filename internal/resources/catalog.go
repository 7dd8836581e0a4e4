// Файл: internal/resources/catalog.go
package resources

import (
	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"
)

// Ключи ресурсов
const (
	GovernoratesKey         = "governorates"
	OfficesKey              = "offices"
	DeviceTypesKey          = "device-types"
	DevicesKey              = "devices"
	DamagedDeviceTypesKey   = "damaged-device-types"
	DamagedPassportTypesKey = "damaged-passport-types"
	ExpenseTypesKey         = "expense-types"
	ExpensesKey             = "expenses"
	ArchiveDirectionsKey    = "archive-directions"
	ArchiveSubjectsKey      = "archive-subjects"
	ArchivePartiesKey       = "archive-parties"
	CompaniesKey            = "companies"
	PositionsKey            = "positions"
	AttendanceStatusesKey   = "attendance-statuses"
	HolidaysKey             = "holidays"
)

func ptr(v float64) *float64 { return &v }

var nameColumn = registry.ColumnDescriptor{Title: "Name", DataKey: "name", Sortable: true}

var nameField = registry.FieldDescriptor{Name: "name", Label: "Name", Kind: registry.KindText, Required: true}

// simple - справочник из одного поля name с типовыми REST-эндпоинтами.
func simple(key, label, icon, permission, endpoint string) registry.ResourceDescriptor {
	return registry.ResourceDescriptor{
		Key:            key,
		Label:          label,
		Icon:           icon,
		Permission:     permission,
		ListEndpoint:   endpoint,
		CreateEndpoint: endpoint,
		UpdateEndpoint: endpoint + "/%s",
		DeleteEndpoint: endpoint + "/%s",
		Columns:        []registry.ColumnDescriptor{nameColumn},
		Fields:         []registry.FieldDescriptor{nameField},
	}
}

var governorateSelect = registry.FieldDescriptor{
	Name: "governorateId", Label: "Governorate", Kind: registry.KindSelect, Required: true,
	OptionsEndpoint: "/governorate", NumericID: true,
}

var officeSelect = registry.FieldDescriptor{
	Name: "officeId", Label: "Office", Kind: registry.KindSelect, Required: true,
	DependsOn: "governorateId", DependentEndpoint: "/office?GovernorateId=%s", NumericID: true,
}

func Governorates() registry.ResourceDescriptor {
	d := simple(GovernoratesKey, "Governorates", "map", authz.Governorates, "/governorate")
	d.Columns = append(d.Columns, registry.ColumnDescriptor{Title: "Code", DataKey: "code"})
	d.Fields = append(d.Fields, registry.FieldDescriptor{
		Name: "code", Label: "Code", Kind: registry.KindText, Required: true, Pattern: `^[A-Z]{2,4}$`,
		Placeholder: "BGD",
	})
	return d
}

// Offices - API офисов принимает id удаляемой записи в теле запроса и хранит
// признак посольства булевым значением.
func Offices() registry.ResourceDescriptor {
	return registry.ResourceDescriptor{
		Key:            OfficesKey,
		Label:          "Offices",
		Icon:           "building",
		Permission:     authz.Offices,
		ListEndpoint:   "/office",
		CreateEndpoint: "/office",
		UpdateEndpoint: "/office/%s",
		DeleteEndpoint: "/office",
		DeleteMode:     registry.DeleteByBody,
		DeleteBodyKey:  "id",
		Searchable:     true,
		SearchKeys:     []string{"GovernorateId", "Name"},
		Columns: []registry.ColumnDescriptor{
			nameColumn,
			{Title: "Code", DataKey: "code"},
			{Title: "Governorate", DataKey: "governorateName", Filterable: true},
			{Title: "Budget", DataKey: "budget"},
			{Title: "Embassy", DataKey: "isEmbassy", Render: registry.RenderBool},
		},
		Fields: []registry.FieldDescriptor{
			nameField,
			{Name: "code", Label: "Code", Kind: registry.KindNumber, Required: true, Min: ptr(1), Max: ptr(9999)},
			governorateSelect,
			{Name: "budget", Label: "Budget", Kind: registry.KindNumber, Min: ptr(0)},
			{Name: "isEmbassy", Label: "Embassy", Kind: registry.KindSelect, Required: true, StaticOptions: yesNo, BoolValue: true},
		},
	}
}

var yesNo = []registry.Option{{Label: "Yes", Value: "true"}, {Label: "No", Value: "false"}}

func DeviceTypes() registry.ResourceDescriptor {
	return simple(DeviceTypesKey, "Device types", "cpu", authz.DeviceTypes, "/devicetype")
}

func Devices() registry.ResourceDescriptor {
	return registry.ResourceDescriptor{
		Key:            DevicesKey,
		Label:          "Devices",
		Icon:           "printer",
		Permission:     authz.Devices,
		ListEndpoint:   "/device",
		CreateEndpoint: "/device",
		UpdateEndpoint: "/device/%s",
		DeleteEndpoint: "/device/%s",
		Searchable:     true,
		SearchKeys:     []string{"OfficeId", "DeviceTypeId", "SerialNumber"},
		Columns: []registry.ColumnDescriptor{
			{Title: "Serial number", DataKey: "serialNumber", Filterable: true},
			{Title: "Type", DataKey: "deviceTypeName"},
			{Title: "Office", DataKey: "officeName"},
			{Title: "Installed", DataKey: "installedAt", Render: registry.RenderDate},
		},
		Fields: []registry.FieldDescriptor{
			{Name: "serialNumber", Label: "Serial number", Kind: registry.KindText, Required: true},
			{Name: "deviceTypeId", Label: "Type", Kind: registry.KindSelect, Required: true, OptionsEndpoint: "/devicetype", NumericID: true},
			governorateSelect,
			officeSelect,
			{Name: "installedAt", Label: "Installed", Kind: registry.KindDate},
		},
	}
}

func DamagedDeviceTypes() registry.ResourceDescriptor {
	d := simple(DamagedDeviceTypesKey, "Damaged device types", "tool", authz.DamagedDeviceTypes, "/damageddevicetype")
	d.Columns = append(d.Columns, registry.ColumnDescriptor{Title: "Device type", DataKey: "deviceTypeName"})
	d.Fields = append(d.Fields, registry.FieldDescriptor{
		Name: "deviceTypeId", Label: "Device type", Kind: registry.KindSelect, Required: true,
		OptionsEndpoint: "/devicetype", NumericID: true,
	})
	return d
}

func DamagedPassportTypes() registry.ResourceDescriptor {
	return simple(DamagedPassportTypesKey, "Damaged passport types", "book", authz.DamagedPassportTypes, "/damagedpassporttype")
}

func ExpenseTypes() registry.ResourceDescriptor {
	return simple(ExpenseTypesKey, "Expense types", "tag", authz.ExpenseTypes, "/expensetype")
}

// Expenses - рабочий экран с кодами доступа на каждое действие.
func Expenses() registry.ResourceDescriptor {
	return registry.ResourceDescriptor{
		Key:        ExpensesKey,
		Label:      "Expenses",
		Icon:       "wallet",
		Permission: authz.ExpensesView,
		ActionPermissions: map[authz.Action]string{
			authz.ActionView:   authz.ExpensesView,
			authz.ActionCreate: authz.ExpensesCreate,
			authz.ActionUpdate: authz.ExpensesUpdate,
			authz.ActionDelete: authz.ExpensesDelete,
		},
		ListEndpoint:   "/dailyexpenses",
		CreateEndpoint: "/dailyexpenses",
		UpdateEndpoint: "/dailyexpenses/%s",
		DeleteEndpoint: "/dailyexpenses/%s",
		Searchable:     true,
		SearchKeys:     []string{"OfficeId", "ExpenseTypeId", "StartDate", "EndDate"},
		DateAnchor:     "00:00:00",
		Columns: []registry.ColumnDescriptor{
			{Title: "Date", DataKey: "expenseDate", Render: registry.RenderDate, Sortable: true},
			{Title: "Type", DataKey: "expenseTypeName"},
			{Title: "Amount", DataKey: "amount", Sortable: true},
			{Title: "Office", DataKey: "officeName"},
			{Title: "Notes", DataKey: "notes"},
		},
		Fields: []registry.FieldDescriptor{
			{Name: "expenseDate", Label: "Date", Kind: registry.KindDate, Required: true},
			{Name: "expenseTypeId", Label: "Type", Kind: registry.KindSelect, Required: true, OptionsEndpoint: "/expensetype", NumericID: true},
			{Name: "amount", Label: "Amount", Kind: registry.KindNumber, Required: true, Min: ptr(0), Max: ptr(100000000)},
			governorateSelect,
			officeSelect,
			{Name: "notes", Label: "Notes", Kind: registry.KindText},
		},
	}
}

func ArchiveDirections() registry.ResourceDescriptor {
	return simple(ArchiveDirectionsKey, "Archive directions", "compass", authz.ArchiveDirections, "/archivedirection")
}

func ArchiveSubjects() registry.ResourceDescriptor {
	return simple(ArchiveSubjectsKey, "Archive subjects", "folder", authz.ArchiveSubjects, "/archivesubject")
}

func ArchiveParties() registry.ResourceDescriptor {
	return simple(ArchivePartiesKey, "Archive parties", "users", authz.ArchiveParties, "/archiveparty")
}

func Companies() registry.ResourceDescriptor {
	d := simple(CompaniesKey, "Companies", "briefcase", authz.Companies, "/company")
	d.Columns = append(d.Columns,
		registry.ColumnDescriptor{Title: "Phone", DataKey: "phone"},
		registry.ColumnDescriptor{Title: "Address", DataKey: "address"},
	)
	d.Fields = append(d.Fields,
		registry.FieldDescriptor{Name: "phone", Label: "Phone", Kind: registry.KindText, Pattern: `^\+?[0-9]{7,15}$`, Placeholder: "+9647700000000"},
		registry.FieldDescriptor{Name: "address", Label: "Address", Kind: registry.KindText},
	)
	return d
}

func Positions() registry.ResourceDescriptor {
	return simple(PositionsKey, "Positions", "id-badge", authz.Positions, "/position")
}

func AttendanceStatuses() registry.ResourceDescriptor {
	d := simple(AttendanceStatusesKey, "Attendance statuses", "clock", authz.AttendanceStatuses, "/attendancestatus")
	d.Columns = append(d.Columns, registry.ColumnDescriptor{Title: "Paid", DataKey: "isPaid", Render: registry.RenderOption})
	d.Fields = append(d.Fields, registry.FieldDescriptor{
		Name: "isPaid", Label: "Paid", Kind: registry.KindSelect, Required: true, StaticOptions: yesNo, BoolValue: true,
	})
	return d
}

func Holidays() registry.ResourceDescriptor {
	return registry.ResourceDescriptor{
		Key:            HolidaysKey,
		Label:          "Holidays",
		Icon:           "calendar",
		Permission:     authz.Holidays,
		ListEndpoint:   "/holiday",
		CreateEndpoint: "/holiday",
		UpdateEndpoint: "/holiday/%s",
		DeleteEndpoint: "/holiday/%s",
		Columns: []registry.ColumnDescriptor{
			nameColumn,
			{Title: "Date", DataKey: "date", Render: registry.RenderDate, Sortable: true},
			{Title: "Days", DataKey: "days"},
		},
		Fields: []registry.FieldDescriptor{
			nameField,
			{Name: "date", Label: "Date", Kind: registry.KindDate, Required: true},
			{Name: "days", Label: "Days", Kind: registry.KindNumber, Required: true, Min: ptr(1), Max: ptr(30)},
		},
	}
}

// All - плоские ресурсы каталога в порядке меню.
func All() []registry.ResourceDescriptor {
	return []registry.ResourceDescriptor{
		Governorates(),
		Offices(),
		DeviceTypes(),
		Devices(),
		DamagedDeviceTypes(),
		DamagedPassportTypes(),
		ExpenseTypes(),
		Expenses(),
		ArchiveDirections(),
		ArchiveSubjects(),
		ArchiveParties(),
		Companies(),
		Positions(),
		AttendanceStatuses(),
		Holidays(),
	}
}
