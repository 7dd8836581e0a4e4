package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"backoffice-console/internal/authz"
	apperrors "backoffice-console/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func float(v float64) *float64 { return &v }

func deviceTypes() ResourceDescriptor {
	return ResourceDescriptor{
		Key:            "device-types",
		Label:          "Device types",
		Permission:     authz.DeviceTypes,
		ListEndpoint:   "/devicetype",
		CreateEndpoint: "/devicetype",
		UpdateEndpoint: "/devicetype/%s",
		DeleteEndpoint: "/devicetype/%s",
		Columns:        []ColumnDescriptor{{Title: "Name", DataKey: "name"}},
		Fields: []FieldDescriptor{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
		},
	}
}

func devices() ResourceDescriptor {
	return ResourceDescriptor{
		Key:            "devices",
		Permission:     authz.Devices,
		ListEndpoint:   "/device",
		CreateEndpoint: "/device",
		UpdateEndpoint: "/device/%s",
		DeleteEndpoint: "/device/%s",
		Columns:        []ColumnDescriptor{{Title: "Serial", DataKey: "serialNumber"}},
		Fields: []FieldDescriptor{
			{Name: "serialNumber", Kind: KindText, Required: true},
			{Name: "governorateId", Kind: KindSelect, OptionsEndpoint: "/governorate", NumericID: true},
			{Name: "officeId", Kind: KindSelect, DependsOn: "governorateId", DependentEndpoint: "/office?GovernorateId=%s", NumericID: true},
			{Name: "capacity", Kind: KindNumber, Min: float(0), Max: float(50)},
			{Name: "installedAt", Kind: KindDate},
			{Name: "tags", Kind: KindMultiSelect, StaticOptions: []Option{{Label: "A", Value: "a"}, {Label: "B", Value: "b"}}},
			{Name: "createdBy", Kind: KindText, ReadOnly: true},
		},
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := New(zap.NewNop())
	require.NoError(t, r.Register(deviceTypes()))

	desc, err := r.Get("device-types")
	require.NoError(t, err)
	assert.Equal(t, "/devicetype/15", desc.UpdateEndpointFor("15"))
	assert.Equal(t, "/devicetype/15", desc.DeleteEndpointFor("15"))

	err = r.Register(deviceTypes())
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "повторная регистрация")
}

func TestRegistry_RegisterKeepsOwnCopy(t *testing.T) {
	desc := devices()
	desc.SearchKeys = []string{"SerialNumber"}
	desc.ActionPermissions = map[authz.Action]string{authz.ActionDelete: "DEVd"}
	desc.Columns[0].Actions = []authz.Action{authz.ActionUpdate}

	r := New(zap.NewNop())
	require.NoError(t, r.Register(desc))

	desc.Fields[2].Name = "broken"
	*desc.Fields[3].Max = 1
	desc.Fields[5].StaticOptions[0].Value = "z"
	desc.Columns[0].Title = "Changed"
	desc.Columns[0].Actions[0] = authz.ActionDelete
	desc.SearchKeys[0] = "Other"
	desc.ActionPermissions[authz.ActionDelete] = "XXX"

	got, err := r.Get("devices")
	require.NoError(t, err)
	assert.Equal(t, "officeId", got.Fields[2].Name)
	assert.Equal(t, float64(50), *got.Fields[3].Max)
	assert.Equal(t, "a", got.Fields[5].StaticOptions[0].Value)
	assert.Equal(t, "Serial", got.Columns[0].Title)
	assert.Equal(t, []authz.Action{authz.ActionUpdate}, got.Columns[0].Actions)
	assert.Equal(t, []string{"SerialNumber"}, got.SearchKeys)
	assert.Equal(t, "DEVd", got.PermissionFor(authz.ActionDelete))
}

func TestRegistry_CompositeTabsKeepOwnCopy(t *testing.T) {
	tabDesc := deviceTypes()
	c := Composite{
		Key: "tree", Permission: authz.DeviceTypes,
		Tabs: []HierarchyTab{{Name: "types", Label: "Types", Resource: &tabDesc}},
	}
	r := New(zap.NewNop())
	require.NoError(t, r.RegisterComposite(c))

	tabDesc.Fields[0].Name = "renamed"

	entry, err := r.Resolve("tree")
	require.NoError(t, err)
	require.NotNil(t, entry.Composite)
	assert.Equal(t, "name", entry.Composite.Tabs[0].Resource.Fields[0].Name)
}

func TestFieldDescriptor_DependentURLEscapesParentValue(t *testing.T) {
	office := devices().Fields[2]

	assert.Equal(t, "/office?GovernorateId=7", office.DependentURL("7"))
	assert.Equal(t, "/office?GovernorateId=1%26PageSize%3D1000", office.DependentURL("1&PageSize=1000"))
	assert.Equal(t, "/office?GovernorateId=a+b", office.DependentURL("a b"))
}

func TestDescriptor_CustomHooksOverrideDefaults(t *testing.T) {
	d := deviceTypes()
	d.ToPayload = func(values map[string]any, id string) (map[string]any, error) {
		return map[string]any{"Name": values["name"], "Key": id}, nil
	}
	d.FromRecord = func(record map[string]any) map[string]any {
		return map[string]any{"name": record["Name"]}
	}

	values := d.Record(map[string]any{"Name": "Printer"})
	assert.Equal(t, map[string]any{"name": "Printer"}, values)

	payload, err := d.Payload(values, "4")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Name": "Printer", "Key": "4"}, payload)
}

func TestRegistry_UnknownKeyIsConfigurationError(t *testing.T) {
	r := New(zap.NewNop())

	_, err := r.Get("nope")
	var cfgErr *apperrors.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "nope", cfgErr.Resource)

	_, err = r.Resolve("nope")
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDescriptor_ValidateRejectsBrokenConfig(t *testing.T) {
	cases := map[string]func(d *ResourceDescriptor){
		"без эндпоинта списка":  func(d *ResourceDescriptor) { d.ListEndpoint = "" },
		"обновление без %s":     func(d *ResourceDescriptor) { d.UpdateEndpoint = "/device" },
		"два источника":         func(d *ResourceDescriptor) { d.Fields[1].StaticOptions = []Option{{Label: "x", Value: "1"}} },
		"зависимость в никуда":  func(d *ResourceDescriptor) { d.Fields[2].DependsOn = "missing" },
		"удаление по телу":      func(d *ResourceDescriptor) { d.DeleteMode = DeleteByBody; d.DeleteBodyKey = "" },
		"min больше max":        func(d *ResourceDescriptor) { d.Fields[3].Min = float(100) },
		"варианты у текста":     func(d *ResourceDescriptor) { d.Fields[0].OptionsEndpoint = "/x" },
		"цикл зависимостей": func(d *ResourceDescriptor) {
			d.Fields[1].OptionsEndpoint = ""
			d.Fields[1].DependsOn = "officeId"
			d.Fields[1].DependentEndpoint = "/governorate?OfficeId=%s"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			d := devices()
			d.Fields = append([]FieldDescriptor(nil), d.Fields...)
			mutate(&d)
			assert.Error(t, d.Validate())
		})
	}
	d := devices()
	assert.NoError(t, d.Validate())
}

func TestDescriptor_TableColumnsAppendExactlyOneActionsColumn(t *testing.T) {
	d := deviceTypes()
	d.Columns = append(d.Columns, ColumnDescriptor{Title: "Actions", DataKey: ActionsColumnKey})

	cols := d.TableColumns()
	require.Len(t, cols, 2)
	assert.Equal(t, "name", cols[0].DataKey)
	assert.Equal(t, ActionsColumnKey, cols[1].DataKey)
}

func TestDescriptor_PermissionFor(t *testing.T) {
	d := deviceTypes()
	d.ActionPermissions = map[authz.Action]string{authz.ActionDelete: "EXd"}

	assert.Equal(t, authz.DeviceTypes, d.PermissionFor(authz.ActionView))
	assert.Equal(t, "EXd", d.PermissionFor(authz.ActionDelete))
}

func TestDefaultPayload_RoundTrip(t *testing.T) {
	d := devices()
	record := map[string]any{
		"id":            float64(9),
		"serialNumber":  "SN-001",
		"governorateId": float64(2),
		"officeId":      float64(14),
		"capacity":      float64(12),
		"installedAt":   "2024-05-01T12:00:00Z",
		"tags":          []any{"a", "b"},
		"createdBy":     "system",
	}

	values := d.Record(record)
	payload, err := d.Payload(values, RecordID(record))
	require.NoError(t, err)

	business := map[string]any{}
	for k, v := range record {
		if k != "createdBy" {
			business[k] = v
		}
	}
	want, _ := json.Marshal(business)
	got, _ := json.Marshal(payload)
	assert.JSONEq(t, string(want), string(got))
}

func TestDefaultPayload_CreateHasNoID(t *testing.T) {
	d := devices()
	payload, err := d.Payload(map[string]any{"serialNumber": "  X  ", "governorateId": "3", "installedAt": "2024-02-29"}, "")
	require.NoError(t, err)

	_, hasID := payload["id"]
	assert.False(t, hasID)
	assert.Equal(t, "X", payload["serialNumber"])
	assert.Equal(t, int64(3), payload["governorateId"])
	assert.Nil(t, payload["officeId"])
	assert.Equal(t, []any{}, payload["tags"])
	assert.Equal(t, "2024-02-29T12:00:00Z", payload["installedAt"])
}

func TestNormalizeDate(t *testing.T) {
	got, err := NormalizeDate("2024-12-31", "00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31T00:00:00Z", got)

	got, err = NormalizeDate("2024-12-31T23:59:59+03:00", "")
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31T12:00:00Z", got)

	_, err = NormalizeDate("31/12/2024", "")
	assert.Error(t, err)
}

func TestComposite_Validate(t *testing.T) {
	parent := deviceTypes()
	child := devices()
	child.Fields = append([]FieldDescriptor(nil), child.Fields...)

	c := Composite{
		Key:        "tree",
		Permission: "LOVmh",
		Tabs: []HierarchyTab{
			{Name: "types", Resource: &parent},
			{Name: "devices", Resource: &child, DependsOnTab: "types", ForeignKey: "governorateId"},
		},
	}
	assert.NoError(t, c.Validate())

	c.Tabs[1].ForeignKey = "serialNumber"
	assert.Error(t, c.Validate(), "внешний ключ не является выбором")

	c.Tabs[1].ForeignKey = "governorateId"
	c.Tabs[1].DependsOnTab = "ghost"
	assert.Error(t, c.Validate())

	r := New(zap.NewNop())
	c.Tabs[1].DependsOnTab = "types"
	require.NoError(t, r.RegisterComposite(c))
	entry, err := r.Resolve("tree")
	require.NoError(t, err)
	require.NotNil(t, entry.Composite)
	assert.Nil(t, entry.Resource)
}
