package routes

import (
	"github.com/labstack/echo/v4"

	"backoffice-console/internal/controllers"
)

func runRolePermissionRouter(secureGroup *echo.Group, rpCtrl *controllers.RolePermissionController) {
	rpGroup := secureGroup.Group("/role-permissions")

	rpGroup.GET("", rpCtrl.LoadScreen)
	rpGroup.POST("/toggle", rpCtrl.Toggle)
	rpGroup.POST("/description", rpCtrl.SetDescription)
	rpGroup.POST("/select-all", rpCtrl.SelectAll)
	rpGroup.POST("/clear-all", rpCtrl.ClearAll)
	rpGroup.PUT("/save", rpCtrl.Save)
	rpGroup.DELETE("/revoke", rpCtrl.Revoke)
}
