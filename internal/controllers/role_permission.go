package controllers

import (
	"fmt"
	"net/http"

	"backoffice-console/internal/dto"
	"backoffice-console/internal/services"
	"backoffice-console/pkg/api"
	apperrors "backoffice-console/pkg/errors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RolePermissionController struct {
	rpService services.RolePermissionServiceInterface
	logger    *zap.Logger
}

func NewRolePermissionController(
	rpService services.RolePermissionServiceInterface,
	logger *zap.Logger,
) *RolePermissionController {
	return &RolePermissionController{
		rpService: rpService,
		logger:    logger,
	}
}

func (c *RolePermissionController) LoadScreen(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	screen, err := c.rpService.LoadScreen(ctx.Request().Context(), actor)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", screen)
}

func (c *RolePermissionController) Toggle(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.TogglePermissionDTO
	if err := bindAndValidate(ctx, &req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	state, err := c.rpService.Toggle(ctx.Request().Context(), actor, req.Code)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", state.Selection.Entries())
}

func (c *RolePermissionController) SetDescription(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.PermissionDescriptionDTO
	if err := bindAndValidate(ctx, &req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	state, err := c.rpService.SetDescription(ctx.Request().Context(), actor, req.Code, req.Description.String)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", state.Selection.Entries())
}

func (c *RolePermissionController) SelectAll(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	state, err := c.rpService.SelectAll(ctx.Request().Context(), actor)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", state.Selection.Entries())
}

func (c *RolePermissionController) ClearAll(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	state, err := c.rpService.ClearAll(ctx.Request().Context(), actor)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", state.Selection.Entries())
}

// Save заменяет набор прав ролей целиком; full_replace в ответе - предупреждение для интерфейса.
func (c *RolePermissionController) Save(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.RolesDTO
	if err := bindAndValidate(ctx, &req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	result, err := c.rpService.Save(ctx.Request().Context(), actor, req.Roles)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return batchResponse(ctx, result)
}

func (c *RolePermissionController) Revoke(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.RolesDTO
	if err := bindAndValidate(ctx, &req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	result, err := c.rpService.Revoke(ctx.Request().Context(), actor, req.Roles)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return batchResponse(ctx, result)
}

// batchResponse - 200 при полном успехе, иначе 207 с итогом по каждой роли.
func batchResponse(ctx echo.Context, result *services.BatchResult) error {
	if err := result.Err(); err != nil {
		return ctx.JSON(http.StatusMultiStatus, api.Response[*services.BatchResult]{
			Status:  false,
			Message: "Операция выполнена частично",
			Body:    result,
		})
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", result)
}

func bindAndValidate(ctx echo.Context, req interface{}) error {
	if err := ctx.Bind(req); err != nil {
		return fmt.Errorf("неверное тело запроса: %w", apperrors.ErrBadRequest)
	}
	return ctx.Validate(req)
}
