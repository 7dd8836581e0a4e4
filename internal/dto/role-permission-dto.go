package dto

import "github.com/aarondl/null/v8"

type TogglePermissionDTO struct {
	Code string `json:"code" validate:"required,perm_code"`
}

type PermissionDescriptionDTO struct {
	Code        string      `json:"code" validate:"required,perm_code"`
	Description null.String `json:"description" validate:"omitempty,max=255"`
}

// RolesDTO - роли пакетной операции; каждое имя уходит в путь запроса.
type RolesDTO struct {
	Roles []string `json:"roles" validate:"required,min=1,dive,role_name"`
}
