package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"backoffice-console/internal/controllers"
	"backoffice-console/internal/forms"
	"backoffice-console/internal/listeners"
	"backoffice-console/internal/registry"
	"backoffice-console/internal/repositories"
	"backoffice-console/internal/resources"
	"backoffice-console/internal/services"
	"backoffice-console/internal/transport"
	"backoffice-console/pkg/config"
	"backoffice-console/pkg/eventbus"
	"backoffice-console/pkg/middleware"
	"backoffice-console/pkg/service"
	"backoffice-console/pkg/validation"
)

type Loggers struct {
	Main      *zap.Logger
	Auth      *zap.Logger
	Transport *zap.Logger
	Audit     *zap.Logger
}

// InitRouter собирает реестр, сервисы и контроллеры консоли. dbConn и bus могут быть
// nil: тогда журнал аудита не ведётся и маршрут /audit не регистрируется.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	jwtSvc service.JWTService,
	bus *eventbus.Bus,
	loggers *Loggers,
	cfg *config.Config,
) error {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	remote := transport.New(cfg.RemoteAPI.BaseURL, cfg.RemoteAPI.Timeout, loggers.Transport)

	reg := registry.New(loggers.Main)
	if err := resources.Register(reg); err != nil {
		loggers.Main.Error("Каталог ресурсов не собран", zap.Error(err))
		return err
	}

	var publisher services.Publisher
	if bus != nil {
		publisher = bus
	}

	// --- 1. РЕПОЗИТОРИИ ---
	sessionRepo := repositories.NewRedisSessionRepository(redisClient, cfg.Session.TTL)
	var auditRepo repositories.AuditRepositoryInterface
	if dbConn != nil {
		auditRepo = repositories.NewAuditRepository(dbConn, loggers.Audit)
		if bus != nil {
			listeners.NewAuditListener(auditRepo, loggers.Audit).Register(bus)
		}
	}

	// --- 2. СЕРВИСЫ ---
	entityService := services.NewEntityService(remote, publisher, loggers.Main)
	formService := services.NewFormService(reg, entityService, forms.NewTransportLoader(remote), sessionRepo, validation.New(), loggers.Main)
	hierarchyService := services.NewHierarchyService(reg, entityService, formService, sessionRepo, loggers.Main)
	rpService := services.NewRolePermissionService(remote, sessionRepo, publisher, cfg.Batch.Concurrency, loggers.Main)
	menuService := services.NewMenuService(resources.Menu(), loggers.Main)
	exportService := services.NewExportService(entityService, loggers.Main)

	// --- 3. КОНТРОЛЛЕРЫ ---
	resourceController := controllers.NewResourceController(reg, entityService, formService, exportService, loggers.Main)
	formController := controllers.NewFormController(formService, loggers.Main)
	hierarchyController := controllers.NewHierarchyController(hierarchyService, loggers.Main)
	rpController := controllers.NewRolePermissionController(rpService, loggers.Main)
	menuController := controllers.NewMenuController(menuService, loggers.Main)

	// --- 4. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runMenuRouter(secureGroup, menuController)
	runResourceRouter(secureGroup, resourceController)
	runFormRouter(secureGroup, formController)
	runHierarchyRouter(secureGroup, hierarchyController)
	runRolePermissionRouter(secureGroup, rpController)
	if auditRepo != nil {
		auditController := controllers.NewAuditController(services.NewAuditService(auditRepo, loggers.Audit), loggers.Audit)
		runAuditRouter(secureGroup, auditController)
	}

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено", zap.Int("resources", len(reg.Keys())))
	return nil
}
