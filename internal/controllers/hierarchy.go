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

type HierarchyController struct {
	hierarchy services.HierarchyServiceInterface
	logger    *zap.Logger
}

func NewHierarchyController(hierarchy services.HierarchyServiceInterface, logger *zap.Logger) *HierarchyController {
	return &HierarchyController{hierarchy: hierarchy, logger: logger}
}

func (c *HierarchyController) Open(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	view, err := c.hierarchy.Open(ctx.Request().Context(), actor, ctx.Param("key"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", view)
}

func (c *HierarchyController) Select(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	view, err := c.hierarchy.Select(ctx.Request().Context(), actor, ctx.Param("key"), ctx.Param("tab"))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", view)
}

func (c *HierarchyController) OpenForm(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var req dto.HierarchyFormDTO
	if err := ctx.Bind(&req); err != nil {
		return api.ErrorResponse(ctx, fmt.Errorf("неверное тело запроса: %w", apperrors.ErrBadRequest))
	}
	if err := ctx.Validate(&req); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	rendered, err := c.hierarchy.OpenForm(ctx.Request().Context(), actor, ctx.Param("key"), req.RecordID)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusCreated, "Форма открыта", rendered)
}
