package routes

import (
	"github.com/labstack/echo/v4"

	"backoffice-console/internal/controllers"
)

func runResourceRouter(secureGroup *echo.Group, ctrl *controllers.ResourceController) {
	resources := secureGroup.Group("/resources")

	resources.GET("/:key/schema", ctrl.Schema)
	resources.GET("/:key/export", ctrl.Export)
	resources.GET("/:key", ctrl.List)
	resources.POST("/:key", ctrl.Create)
	resources.PUT("/:key/:id", ctrl.Update)
	resources.DELETE("/:key/:id", ctrl.Delete)
}

func runMenuRouter(secureGroup *echo.Group, ctrl *controllers.MenuController) {
	secureGroup.GET("/menu", ctrl.Menu)
}

func runAuditRouter(secureGroup *echo.Group, ctrl *controllers.AuditController) {
	secureGroup.GET("/audit", ctrl.List)
}
