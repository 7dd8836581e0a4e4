package controllers

import (
	"backoffice-console/internal/dto"
	"backoffice-console/internal/repositories"
	"backoffice-console/internal/services"
	"backoffice-console/pkg/api"
	"backoffice-console/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditController struct {
	audit  services.AuditServiceInterface
	logger *zap.Logger
}

func NewAuditController(audit services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{audit: audit, logger: logger}
}

func (c *AuditController) List(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	var filter dto.AuditFilterDTO
	if err := bindAndValidate(ctx, &filter); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	page, pageSize := utils.ParsePaginationParams(ctx.QueryParams())

	result, err := c.audit.List(ctx.Request().Context(), actor, repositories.AuditFilter{
		Resource: filter.Resource,
		ActorID:  filter.ActorID,
		Outcome:  filter.Outcome,
	}, page, pageSize)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessList(ctx, "Successfully", result.Items, result.TotalItems, result.Page, result.PageSize)
}
