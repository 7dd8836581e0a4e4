package controllers

import (
	"net/http"

	"backoffice-console/internal/services"
	"backoffice-console/pkg/api"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type MenuController struct {
	menu   services.MenuServiceInterface
	logger *zap.Logger
}

func NewMenuController(menu services.MenuServiceInterface, logger *zap.Logger) *MenuController {
	return &MenuController{menu: menu, logger: logger}
}

func (c *MenuController) Menu(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return api.ErrorResponse(ctx, err)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", c.menu.Menu(actor))
}
