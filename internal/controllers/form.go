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

type FormController struct {
	forms  services.FormServiceInterface
	logger *zap.Logger
}

func NewFormController(formService services.FormServiceInterface, logger *zap.Logger) *FormController {
	return &FormController{forms: formService, logger: logger}
}

func (c *FormController) Open(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.OpenFormDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, fmt.Errorf("неверное тело запроса: %w", apperrors.ErrBadRequest))
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	rendered, err := c.forms.Open(ctx.Request().Context(), actor, req.Resource, req.RecordID, req.Record, nil)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Форма открыта", rendered)
}

func (c *FormController) Get(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	rendered, err := c.forms.Get(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", rendered)
}

func (c *FormController) SetField(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.SetFieldDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, fmt.Errorf("неверное тело запроса: %w", apperrors.ErrBadRequest))
	}

	rendered, err := c.forms.SetField(ctx.Request().Context(), actor, ctx.Param("id"), ctx.Param("name"), req.Value)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", rendered)
}

// Submit - при ошибке форма остаётся открытой, её можно исправить и отправить снова.
func (c *FormController) Submit(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := c.forms.Submit(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Сохранено", nil)
}

func (c *FormController) Discard(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := c.forms.Discard(ctx.Request().Context(), actor, ctx.Param("id")); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}
