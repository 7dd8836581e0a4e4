package routes

import (
	"github.com/labstack/echo/v4"

	"backoffice-console/internal/controllers"
)

func runFormRouter(secureGroup *echo.Group, ctrl *controllers.FormController) {
	formGroup := secureGroup.Group("/forms")

	formGroup.POST("", ctrl.Open)
	formGroup.GET("/:id", ctrl.Get)
	formGroup.PATCH("/:id/fields/:name", ctrl.SetField)
	formGroup.POST("/:id/submit", ctrl.Submit)
	formGroup.DELETE("/:id", ctrl.Discard)
}

func runHierarchyRouter(secureGroup *echo.Group, ctrl *controllers.HierarchyController) {
	hierarchyGroup := secureGroup.Group("/hierarchies")

	hierarchyGroup.GET("/:key", ctrl.Open)
	hierarchyGroup.POST("/:key/tabs/:tab", ctrl.Select)
	hierarchyGroup.POST("/:key/form", ctrl.OpenForm)
}
