package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"backoffice-console/internal/authz"
	"backoffice-console/internal/forms"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/services"
	"backoffice-console/pkg/api"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ResourceController struct {
	registry registry.RegistryInterface
	entities services.EntityServiceInterface
	forms    services.FormServiceInterface
	export   services.ExportServiceInterface
	logger   *zap.Logger
}

func NewResourceController(
	reg registry.RegistryInterface,
	entities services.EntityServiceInterface,
	formService services.FormServiceInterface,
	export services.ExportServiceInterface,
	logger *zap.Logger,
) *ResourceController {
	return &ResourceController{
		registry: reg,
		entities: entities,
		forms:    formService,
		export:   export,
		logger:   logger,
	}
}

// ResourceSchema - всё, что нужно клиенту для построения экрана ресурса.
type ResourceSchema struct {
	Key     string                      `json:"key"`
	Label   string                      `json:"label"`
	Icon    string                      `json:"icon"`
	Columns []registry.ColumnDescriptor `json:"columns"`
	Form    forms.RenderedForm          `json:"form"`
}

func actorFrom(ctx echo.Context) (*authz.Actor, error) {
	return utils.GetActorFromCtx(ctx.Request().Context())
}

// bindValues читает только тело: параметры пути не должны попадать в значения полей.
func bindValues(ctx echo.Context) (map[string]any, error) {
	values := make(map[string]any)
	if err := (&echo.DefaultBinder{}).BindBody(ctx, &values); err != nil {
		return nil, fmt.Errorf("неверное тело запроса: %w", apperrors.ErrBadRequest)
	}
	return values, nil
}

func (c *ResourceController) descriptor(ctx echo.Context) (*authz.Actor, *registry.ResourceDescriptor, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return nil, nil, err
	}
	desc, err := c.registry.Get(ctx.Param("key"))
	if err != nil {
		return nil, nil, err
	}
	return actor, desc, nil
}

func (c *ResourceController) Schema(ctx echo.Context) error {
	actor, desc, err := c.descriptor(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	if err := authz.Require(actor, desc, authz.ActionView); err != nil {
		return api.ErrorResponse(ctx, err)
	}

	table := c.entities.Rows(actor, desc, nil)
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", ResourceSchema{
		Key:     desc.Key,
		Label:   desc.Label,
		Icon:    desc.Icon,
		Columns: table.Columns,
		Form:    forms.RenderForm(desc, forms.NewForm(desc, nil)),
	})
}

func (c *ResourceController) List(ctx echo.Context) error {
	actor, desc, err := c.descriptor(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	page, pageSize := utils.ParsePaginationParams(ctx.QueryParams())
	filters := utils.ParseFilters(ctx.QueryParams())

	result, err := c.entities.List(ctx.Request().Context(), actor, desc, page, pageSize, filters)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", c.entities.Rows(actor, desc, result))
}

func (c *ResourceController) Create(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	values, err := bindValues(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.forms.SubmitValues(ctx.Request().Context(), actor, ctx.Param("key"), "", values); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusCreated, "Запись создана", nil)
}

func (c *ResourceController) Update(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		return api.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	values, err := bindValues(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	if err := c.forms.SubmitValues(ctx.Request().Context(), actor, ctx.Param("key"), id, values); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Запись обновлена", nil)
}

// Delete без confirm=true отвечает 409: клиент должен спросить подтверждение.
func (c *ResourceController) Delete(ctx echo.Context) error {
	actor, desc, err := c.descriptor(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	confirmed := ctx.QueryParam("confirm") == "true"

	if err := c.entities.Remove(ctx.Request().Context(), actor, desc, ctx.Param("id"), confirmed); err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne[any](ctx, http.StatusOK, "Запись удалена", nil)
}

func (c *ResourceController) Export(ctx echo.Context) error {
	actor, desc, err := c.descriptor(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}

	f, fileName, err := c.export.Export(ctx.Request().Context(), actor, desc, utils.ParseFilters(ctx.QueryParams()))
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			c.logger.Warn("Файл выгрузки не закрыт", zap.Error(err))
		}
	}()

	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return f.Write(ctx.Response().Writer)
}
