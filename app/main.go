// Файл: main.go

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice-console/internal/routes"
	"backoffice-console/pkg/api"
	"backoffice-console/pkg/config"
	"backoffice-console/pkg/database/postgresql"
	apperrors "backoffice-console/pkg/errors"
	"backoffice-console/pkg/eventbus"
	applogger "backoffice-console/pkg/logger"
	appmiddleware "backoffice-console/pkg/middleware"
	"backoffice-console/pkg/service"
	"backoffice-console/pkg/validation"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// 1. Конфиг (читает .env) и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = api.ErrorResponse(c, httpErr)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Disposition"},
	}))
	e.Use(appmiddleware.RequestLogger(logger))

	e.Validator = validation.New()

	// 3. Хранилища
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
	}
	defer redisClient.Close()

	var dbConn *pgxpool.Pool
	if cfg.Postgres.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		cancel()
		if err != nil {
			logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
		}
		if err := postgresql.Migrate(conn, logger); err != nil {
			logger.Fatal("ошибка миграции журнала аудита", zap.Error(err))
		}
		dbConn = conn
		defer dbConn.Close()
	} else {
		logger.Warn("DATABASE_URL не задан, журнал аудита отключён")
	}

	// 4. Сервисы и роуты
	bus := eventbus.New(logger)
	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, logger)

	appLoggers := &routes.Loggers{
		Main:      logger,
		Auth:      logger.Named("auth"),
		Transport: logger.Named("remote_api"),
		Audit:     logger.Named("audit"),
	}
	if err := routes.InitRouter(e, dbConn, redisClient, jwtSvc, bus, appLoggers, cfg); err != nil {
		logger.Fatal("Ошибка инициализации маршрутов", zap.Error(err))
	}

	// 5. Запуск и корректная остановка
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("🚀 Сервер запущен", zap.String("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Остановка сервера...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Ошибка при остановке сервера", zap.Error(err))
	}
	bus.Wait()
	logger.Info("Сервер остановлен")
}
