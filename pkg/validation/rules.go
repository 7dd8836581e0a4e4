package validation

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	permissionCodeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_:.\-]{1,63}$`)
	roleNameRe       = regexp.MustCompile(`^[\p{L}\p{N}_\- ]{1,64}$`)
)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("perm_code", isPermissionCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("role_name", isRoleName); err != nil {
		return err
	}
	return nil
}

// isPermissionCode - непрозрачный код вида "LOVo", "EXu"
func isPermissionCode(fl validator.FieldLevel) bool {
	return permissionCodeRe.MatchString(fl.Field().String())
}

// isRoleName - имя роли без спецсимволов (уходит в путь URL)
func isRoleName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return strings.TrimSpace(s) == s && roleNameRe.MatchString(s)
}
