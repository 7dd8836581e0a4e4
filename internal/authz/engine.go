package authz

import (
	apperrors "backoffice-console/pkg/errors"
)

// Guard - всё, что знает свой код доступа. Реализуется дескриптором ресурса.
type Guard interface {
	GuardKey() string
	RequiredPermission() string
	PermissionFor(action Action) string
}

// HasPermission - проверка принадлежности кода набору актора.
// Отсутствующий актор или набор: всегда отказ.
func HasPermission(actor *Actor, code string) bool {
	if actor == nil || actor.permissions == nil || code == "" {
		return false
	}
	_, exists := actor.permissions[code]
	return exists
}

// HasAny - true, если актор владеет хотя бы одним из кодов.
func HasAny(actor *Actor, codes []string) bool {
	for _, code := range codes {
		if HasPermission(actor, code) {
			return true
		}
	}
	return false
}

func CanPerform(actor *Actor, guard Guard, action Action) bool {
	if guard == nil || !action.Valid() {
		return false
	}
	return HasPermission(actor, guard.PermissionFor(action))
}

// Require - проверка на входе в экран или действие. Меню лишь скрывает пункты,
// граница безопасности здесь.
func Require(actor *Actor, guard Guard, action Action) error {
	if CanPerform(actor, guard, action) {
		return nil
	}
	err := &apperrors.AuthorizationError{}
	if guard != nil {
		err.Resource = guard.GuardKey()
		err.Permission = guard.PermissionFor(action)
	}
	return err
}

// RequireCode - то же для экранов без дескриптора (редактор прав, журнал).
func RequireCode(actor *Actor, screen, code string) error {
	if HasPermission(actor, code) {
		return nil
	}
	return &apperrors.AuthorizationError{Resource: screen, Permission: code}
}
