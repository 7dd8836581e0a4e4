package authz

import (
	"errors"
	"testing"

	apperrors "backoffice-console/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGuard struct {
	key     string
	coarse  string
	actions map[Action]string
}

func (g testGuard) GuardKey() string           { return g.key }
func (g testGuard) RequiredPermission() string { return g.coarse }
func (g testGuard) PermissionFor(a Action) string {
	if code, ok := g.actions[a]; ok {
		return code
	}
	return g.coarse
}

func TestHasPermission_FailsClosed(t *testing.T) {
	assert.False(t, HasPermission(nil, Offices), "nil актор")
	assert.False(t, HasPermission(&Actor{}, Offices), "актор без набора")
	assert.False(t, HasPermission(NewActor("1", []string{Offices}, nil, Profile{}), ""), "пустой код")
	assert.True(t, HasPermission(NewActor("1", []string{Offices}, nil, Profile{}), Offices))
}

func TestCanPerform_CoarseAndPerAction(t *testing.T) {
	offices := testGuard{key: "offices", coarse: Offices}
	expenses := testGuard{key: "expenses", coarse: ExpensesView, actions: map[Action]string{
		ActionUpdate: ExpensesUpdate,
		ActionDelete: ExpensesDelete,
	}}

	actor := NewActor("7", []string{Offices, ExpensesView, ExpensesUpdate}, []string{"Supervisor"}, Profile{})

	for _, a := range []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
		assert.True(t, CanPerform(actor, offices, a), "грубый код покрывает %s", a)
	}
	assert.True(t, CanPerform(actor, expenses, ActionView))
	assert.True(t, CanPerform(actor, expenses, ActionUpdate))
	assert.False(t, CanPerform(actor, expenses, ActionDelete))
	assert.False(t, CanPerform(actor, nil, ActionView))
	assert.False(t, CanPerform(actor, offices, Action("approve")))
}

func TestRequire_ReturnsAuthorizationError(t *testing.T) {
	guard := testGuard{key: "governorates", coarse: Governorates}
	err := Require(NewActor("1", []string{Offices}, nil, Profile{}), guard, ActionView)
	require.Error(t, err)

	var authErr *apperrors.AuthorizationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, "governorates", authErr.Resource)
	assert.Equal(t, Governorates, authErr.Permission)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.NoError(t, RequireCode(NewActor("1", []string{AuditView}, nil, Profile{}), "audit", AuditView))
}

func TestActor_IsASnapshot(t *testing.T) {
	perms := []string{Offices, Governorates}
	roles := []string{"Admin"}
	actor := NewActor("1", perms, roles, Profile{OfficeID: "3"})

	perms[0] = "tampered"
	roles[0] = "tampered"
	got := actor.Roles()
	got[0] = "again"

	assert.Equal(t, []string{Governorates, Offices}, actor.Permissions())
	assert.Equal(t, []string{"Admin"}, actor.Roles())
	assert.Equal(t, "3", actor.Profile().OfficeID)
}
