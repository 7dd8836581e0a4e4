package resources

import (
	"testing"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegister_WholeCatalogIsValid(t *testing.T) {
	reg := registry.New(zap.NewNop())
	require.NoError(t, Register(reg))

	entry, err := reg.Resolve(MinistryHierarchyKey)
	require.NoError(t, err)
	require.NotNil(t, entry.Composite)
	require.Len(t, entry.Composite.Tabs, 5)
	assert.Equal(t, MinistriesKey, entry.Composite.Tabs[0].Name)
	assert.Equal(t, "directorateId", entry.Composite.Tabs[3].ForeignKey)

	for _, d := range All() {
		got, err := reg.Get(d.Key)
		require.NoError(t, err, d.Key)
		cols := got.TableColumns()
		assert.Equal(t, registry.ActionsColumnKey, cols[len(cols)-1].DataKey, d.Key)
	}
}

func TestOffices_DeleteByBodyAndPayloadRoundTrip(t *testing.T) {
	d := Offices()
	assert.Equal(t, registry.DeleteByBody, d.DeleteMode)
	assert.Equal(t, "/office", d.DeleteEndpointFor("12"))

	record := map[string]any{
		"id":            float64(12),
		"name":          "Karkh",
		"code":          float64(101),
		"governorateId": float64(1),
		"budget":        float64(2500),
		"isEmbassy":     true,
	}
	values := d.Record(record)
	assert.Equal(t, "true", values["isEmbassy"])

	payload, err := d.Payload(values, "12")
	require.NoError(t, err)
	assert.Equal(t, true, payload["isEmbassy"])
	assert.Equal(t, int64(12), payload["id"])
	assert.Equal(t, int64(1), payload["governorateId"])
	assert.Equal(t, "Karkh", payload["name"])
}

func TestAttendanceStatuses_PaidFlagRoundTrip(t *testing.T) {
	d := AttendanceStatuses()

	values := d.Record(map[string]any{"id": float64(3), "name": "Sick", "isPaid": false})
	assert.Equal(t, "false", values["isPaid"])

	payload, err := d.Payload(values, "3")
	require.NoError(t, err)
	assert.Equal(t, false, payload["isPaid"])

	values["isPaid"] = "true"
	payload, err = d.Payload(values, "3")
	require.NoError(t, err)
	assert.Equal(t, true, payload["isPaid"])
}

func TestExpenses_PerActionCodes(t *testing.T) {
	d := Expenses()
	assert.Equal(t, authz.ExpensesDelete, d.PermissionFor(authz.ActionDelete))

	actor := authz.NewActor("1", []string{authz.ExpensesView, authz.ExpensesCreate}, nil, authz.Profile{})
	assert.True(t, authz.CanPerform(actor, &d, authz.ActionCreate))
	assert.False(t, authz.CanPerform(actor, &d, authz.ActionDelete))
}

func TestMenu_GroupsRequireAnyChildCode(t *testing.T) {
	menu := Menu()
	var lov registry.MenuItem
	for _, it := range menu {
		if it.Key == "lov" {
			lov = it
		}
	}
	require.NotEmpty(t, lov.Children)
	assert.Contains(t, lov.RequiredPermission, authz.Offices)
	assert.Contains(t, lov.RequiredPermission, authz.MinistryHierarchy)
}
